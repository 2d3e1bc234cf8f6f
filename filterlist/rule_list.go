// Package filterlist contains the sources of URL rewriting rules and the
// storage combining them.
package filterlist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AdguardTeam/urldedup/rules"
)

// Format is the encoding of a rule list.
type Format string

// Format values.
const (
	// FormatJSON is a JSON array of rule records.  It is also used when the
	// format is not set.
	FormatJSON Format = "json"

	// FormatYAML is a YAML sequence of rule records.
	FormatYAML Format = "yaml"
)

// FormatFromPath returns the format of the rule list file judging by its
// extension.  Files with unknown extensions are considered JSON.
func FormatFromPath(path string) (f Format) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// RuleList is a source of URL rewriting rules.
type RuleList interface {
	// GetID returns the rule list identifier.
	GetID() (id int)

	// NewScanner creates a new scanner that reads the list contents.
	NewScanner() (sc *RuleScanner)

	// Close releases the resources held by the list.
	Close() (err error)
}

// RecordRuleList is a rule list of already parsed records.
type RecordRuleList struct {
	// Rules are the rule records.
	Rules []rules.Rule

	// ID is the rule list ID.
	ID int
}

// type check
var _ RuleList = (*RecordRuleList)(nil)

// GetID implements the [RuleList] interface for *RecordRuleList.
func (l *RecordRuleList) GetID() (id int) {
	return l.ID
}

// NewScanner implements the [RuleList] interface for *RecordRuleList.
func (l *RecordRuleList) NewScanner() (sc *RuleScanner) {
	return newRuleScanner(&sliceDecoder{rules: l.Rules}, l.ID)
}

// Close implements the [RuleList] interface for *RecordRuleList.
func (l *RecordRuleList) Close() (err error) {
	return nil
}

// StringRuleList is a rule list encoded as a string.
type StringRuleList struct {
	// RulesText is the encoded list of rule records.
	RulesText string

	// Format is the encoding of RulesText.  The zero value means JSON.
	Format Format

	// ID is the rule list ID.
	ID int
}

// type check
var _ RuleList = (*StringRuleList)(nil)

// GetID implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) GetID() (id int) {
	return l.ID
}

// NewScanner implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) NewScanner() (sc *RuleScanner) {
	return NewRuleScanner(strings.NewReader(l.RulesText), l.Format, l.ID)
}

// Close implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) Close() (err error) {
	return nil
}

// FileRuleList is a rule list stored in a file.
type FileRuleList struct {
	file   *os.File
	format Format
	id     int
}

// NewFileRuleList opens the rule list file at path.  The format is chosen by
// the extension of path, see [FormatFromPath].  The returned list must be
// closed.
func NewFileRuleList(id int, path string) (l *FileRuleList, err error) {
	// #nosec G304 -- Trust the paths to the rule lists given by the user.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule list: %w", err)
	}

	return &FileRuleList{
		file:   f,
		format: FormatFromPath(path),
		id:     id,
	}, nil
}

// type check
var _ RuleList = (*FileRuleList)(nil)

// GetID implements the [RuleList] interface for *FileRuleList.
func (l *FileRuleList) GetID() (id int) {
	return l.id
}

// NewScanner implements the [RuleList] interface for *FileRuleList.  The file
// is read from the start every time.
func (l *FileRuleList) NewScanner() (sc *RuleScanner) {
	_, err := l.file.Seek(0, io.SeekStart)
	if err != nil {
		return newRuleScanner(&errDecoder{err: fmt.Errorf("seeking: %w", err)}, l.id)
	}

	return NewRuleScanner(l.file, l.format, l.id)
}

// Close implements the [RuleList] interface for *FileRuleList.
func (l *FileRuleList) Close() (err error) {
	return l.file.Close()
}
