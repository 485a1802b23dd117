package domain

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Document is a well-formed JSON export file. Records are decoded lazily,
// one at a time, so a malformed record stops iteration at that record.
type Document struct {
	raw []byte
}

// ParseDocument checks that data is a well-formed JSON object.
func ParseDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("domain: %w: malformed JSON", ErrInvalidDocument)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("domain: %w: top level is not an object", ErrInvalidDocument)
	}
	return &Document{raw: data}, nil
}

// Count returns the number of records under key. Absent keys count as zero.
func (d *Document) Count(key string) int {
	recs, err := d.records(key)
	if err != nil {
		return 0
	}
	return len(recs)
}

// EachProduct decodes every product record and passes it to fn, stopping at
// the first decoding error or error returned by fn.
func (d *Document) EachProduct(fn func(Product) error) error {
	return each(d, KeyProducts, DecodeProduct, fn)
}

// EachTradeShow decodes every trade show record.
func (d *Document) EachTradeShow(fn func(TradeShow) error) error {
	return each(d, KeyTradeShows, DecodeTradeShow, fn)
}

// EachEvent decodes every powered event record.
func (d *Document) EachEvent(fn func(Event) error) error {
	return each(d, KeyEvents, DecodeEvent, fn)
}

// EachRDProject decodes every R&D project record.
func (d *Document) EachRDProject(fn func(RDProject) error) error {
	return each(d, KeyRDProjects, DecodeRDProject, fn)
}

func (d *Document) records(key string) ([]gjson.Result, error) {
	v := gjson.GetBytes(d.raw, key)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("domain: %w: %s is not an array", ErrInvalidDocument, key)
	}
	return v.Array(), nil
}

func each[T any](d *Document, key string, decode func(gjson.Result) (T, error), fn func(T) error) error {
	recs, err := d.records(key)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		v, err := decode(rec)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
