package attendance

// =============================================================================
// DATASET - ordered per-person, per-day logs
// =============================================================================

// Dataset is an ordered collection of people. People keep the order in which
// their id was first seen. A Dataset and the people it returns must not be
// modified; derived views build new datasets instead.
//
// A nil *Dataset is an empty dataset.
type Dataset struct {
	people []*Person
	index  map[string]int
	rows   int
}

// People returns the people in encounter order.
func (d *Dataset) People() []*Person {
	if d == nil {
		return nil
	}
	out := make([]*Person, len(d.people))
	copy(out, d.people)
	return out
}

// Person looks a person up by id.
func (d *Dataset) Person(id string) (*Person, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.people[i], true
}

// Len is the number of distinct people.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.people)
}

// Rows is the number of entries across all people and days.
func (d *Dataset) Rows() int {
	if d == nil {
		return 0
	}
	return d.rows
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder accumulates events into a Dataset. It is not safe for concurrent
// use and must not be used after Build.
type Builder struct {
	people []*Person
	index  map[string]int
	days   []map[string]int // per person: date -> position in Days
	rows   int
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Add files an event under its person and date. The first event seen for a
// person fixes the person's display name.
func (b *Builder) Add(ev Event) {
	i, ok := b.index[ev.PersonID]
	if !ok {
		i = len(b.people)
		b.index[ev.PersonID] = i
		b.people = append(b.people, &Person{ID: ev.PersonID, Name: ev.Name})
		b.days = append(b.days, make(map[string]int))
	}
	p := b.people[i]
	pos, ok := b.days[i][ev.Entry.Date]
	if !ok {
		pos = len(p.Days)
		b.days[i][ev.Entry.Date] = pos
		p.Days = append(p.Days, Day{Date: ev.Entry.Date})
	}
	p.Days[pos].Entries = append(p.Days[pos].Entries, ev.Entry)
	b.rows++
}

// Build hands the accumulated people over to a Dataset.
func (b *Builder) Build() *Dataset {
	ds := &Dataset{people: b.people, index: b.index, rows: b.rows}
	b.people, b.index, b.days = nil, nil, nil
	return ds
}

// addPerson appends an already assembled person; used by derived views.
func (b *Builder) addPerson(p *Person) {
	b.index[p.ID] = len(b.people)
	b.people = append(b.people, p)
	for _, d := range p.Days {
		b.rows += len(d.Entries)
	}
}
