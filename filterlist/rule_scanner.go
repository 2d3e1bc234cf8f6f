package filterlist

import (
	"fmt"
	"io"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/urldedup/rules"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRecord is returned when a rule record is malformed.
const ErrInvalidRecord errors.Error = "invalid rule record"

// errEndOfList is returned by a recordDecoder when all the records have been
// read.  Only this exact value ends a scan without an error.
const errEndOfList errors.Error = "end of list"

// validate checks the rule records against their validate tags.
var validate = validator.New(validator.WithRequiredStructEnabled())

// RuleScanner reads rule records from a single rule list one by one.
type RuleScanner struct {
	dec         recordDecoder
	err         error
	currentRule *rules.Rule
	currentIdx  int
	listID      int
}

// NewRuleScanner returns a scanner reading records encoded in format from r.
// The scanner does not close r.
func NewRuleScanner(r io.Reader, format Format, listID int) (s *RuleScanner) {
	var dec recordDecoder
	switch format {
	case FormatYAML:
		dec = &yamlDecoder{dec: yaml.NewDecoder(r)}
	case FormatJSON, "":
		dec = &jsonDecoder{dec: json.NewDecoder(r)}
	default:
		dec = &errDecoder{err: fmt.Errorf("unsupported format %q", format)}
	}

	return newRuleScanner(dec, listID)
}

// newRuleScanner returns a scanner reading records from dec.
func newRuleScanner(dec recordDecoder, listID int) (s *RuleScanner) {
	return &RuleScanner{
		dec:        dec,
		currentIdx: -1,
		listID:     listID,
	}
}

// Scan advances the scanner to the next valid rule record.  It returns false
// when there are no more records or when an error occurs, see
// [RuleScanner.Err].
func (s *RuleScanner) Scan() (ok bool) {
	if s.err != nil || s.dec == nil {
		return false
	}

	r, err := s.dec.next()
	if err != nil {
		s.currentRule = nil
		s.dec = nil
		if err != errEndOfList {
			s.err = fmt.Errorf("list %d: record at index %d: %w", s.listID, s.currentIdx+1, err)
		}

		return false
	}

	s.currentIdx++

	err = validate.Struct(r)
	if err != nil {
		s.currentRule = nil
		s.err = fmt.Errorf("list %d: record at index %d: %w: %w", s.listID, s.currentIdx, ErrInvalidRecord, err)

		return false
	}

	s.currentRule = r

	return true
}

// Rule returns the current rule and its index in the list.  r is nil if there
// is no current rule.
func (s *RuleScanner) Rule() (r *rules.Rule, idx int) {
	return s.currentRule, s.currentIdx
}

// Err returns the first error encountered by the scanner.  The end of the list
// is not an error.
func (s *RuleScanner) Err() (err error) {
	return s.err
}

// recordDecoder decodes rule records one by one.
type recordDecoder interface {
	// next returns the next record.  It returns errEndOfList when there are
	// no more records.
	next() (r *rules.Rule, err error)
}

// sliceDecoder is a recordDecoder over records already in memory.
type sliceDecoder struct {
	rules []rules.Rule
}

// next implements the recordDecoder interface for *sliceDecoder.
func (d *sliceDecoder) next() (r *rules.Rule, err error) {
	if len(d.rules) == 0 {
		return nil, errEndOfList
	}

	// Copy the record so that the scanned rules don't alias the list.
	rule := d.rules[0]
	d.rules = d.rules[1:]

	return &rule, nil
}

// jsonDecoder is a recordDecoder over a JSON array.  The records are decoded
// one at a time, so that the whole array is never kept in memory.
type jsonDecoder struct {
	dec     *json.Decoder
	started bool
}

// next implements the recordDecoder interface for *jsonDecoder.
func (d *jsonDecoder) next() (r *rules.Rule, err error) {
	if !d.started {
		d.started = true

		err = d.expectDelim('[')
		if err != nil {
			return nil, err
		}
	}

	if !d.dec.More() {
		err = d.expectDelim(']')
		if err != nil {
			return nil, err
		}

		return nil, d.expectEnd()
	}

	r = &rules.Rule{}
	err = d.dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", unexpectedEOF(err))
	}

	return r, nil
}

// expectEnd checks that there is nothing but whitespace after the closing
// bracket.  It returns errEndOfList on success.
func (d *jsonDecoder) expectEnd() (err error) {
	tok, err := d.dec.Token()
	if errors.Is(err, io.EOF) {
		return errEndOfList
	} else if err != nil {
		return fmt.Errorf("reading json: %w", err)
	}

	return fmt.Errorf("reading json: unexpected data after the list: %v", tok)
}

// expectDelim reads the next token and checks that it is want.  An empty input
// is an empty list.
func (d *jsonDecoder) expectDelim(want json.Delim) (err error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) && want == '[' {
			return errEndOfList
		}

		return fmt.Errorf("reading json: %w", unexpectedEOF(err))
	}

	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("reading json: want %q, got %v", want, tok)
	}

	return nil
}

// unexpectedEOF replaces [io.EOF] met in the middle of a list with
// [io.ErrUnexpectedEOF].
func unexpectedEOF(err error) (res error) {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

// yamlDecoder is a recordDecoder over a YAML sequence.  YAML documents cannot
// be read element by element, so the sequence is decoded as a whole on the
// first call.
type yamlDecoder struct {
	dec     *yaml.Decoder
	records *sliceDecoder
}

// next implements the recordDecoder interface for *yamlDecoder.
func (d *yamlDecoder) next() (r *rules.Rule, err error) {
	if d.records == nil {
		var rs []rules.Rule
		err = d.dec.Decode(&rs)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}

		d.records = &sliceDecoder{rules: rs}
	}

	return d.records.next()
}

// errDecoder is a recordDecoder that always fails.
type errDecoder struct {
	err error
}

// next implements the recordDecoder interface for *errDecoder.
func (d *errDecoder) next() (r *rules.Rule, err error) {
	return nil, d.err
}
