package parts

import (
	"bytes"
	"encoding/json"
)

// Well-known attribute names. Everything else on a record is a
// manufacturer-supplied parameter label.
const (
	AttrPartNumber   = "Part Number"
	AttrManufacturer = "Mfr"
	AttrPartStatus   = "Part Status"
	AttrError        = "Error"
)

// Record is one component specification: attribute name -> value, in
// insertion order. Order matters downstream (comparison rows and JSON
// exports keep first-seen order), so a plain map is not enough.
type Record struct {
	names  []string
	values map[string]string
}

func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set adds or overwrites an attribute. A re-set attribute keeps its
// original position.
func (r *Record) Set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

func (r *Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns attribute names in insertion order. The slice is shared;
// callers must not mutate it.
func (r *Record) Names() []string {
	return r.names
}

func (r *Record) Len() int {
	return len(r.names)
}

// PartNumber returns the record's part number, or "" if unset.
func (r *Record) PartNumber() string {
	return r.values[AttrPartNumber]
}

// MarshalJSON writes the record as a JSON object with keys in insertion
// order (encoding/json would sort a map).
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Item is one (manufacturer, part number) pair as collected from manual
// entry or a CSV row. Either field may be empty, not both.
type Item struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	PartNumber   string `json:"part_number,omitempty"`
}
