package filterlist

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
)

// RuleStorage combines several rule lists.  It can be scanned using a
// [RuleStorageScanner].
//
// Rule index is an int64 value that actually consists of two int32 values: one
// is the rule list identifier, and the second is the index of the rule inside
// of that list.
type RuleStorage struct {
	// lists is an array of rules lists which can be accessed using this
	// RuleStorage.
	lists []RuleList
}

// NewRuleStorage creates a new instance of the RuleStorage and validates the
// list of rules specified.
func NewRuleStorage(lists []RuleList) (s *RuleStorage, err error) {
	ids := make(map[int]struct{}, len(lists))
	for i, list := range lists {
		id := list.GetID()
		if _, ok := ids[id]; ok {
			return nil, fmt.Errorf("list at index %d: duplicate list id: %d", i, id)
		}

		ids[id] = struct{}{}
	}

	return &RuleStorage{
		lists: lists,
	}, nil
}

// NewRuleStorageScanner creates a new instance of RuleStorageScanner.  It can
// be used to read and parse all the storage contents in the order of the lists.
func (s *RuleStorage) NewRuleStorageScanner() (sc *RuleStorageScanner) {
	scanners := make([]*RuleScanner, 0, len(s.lists))
	for _, list := range s.lists {
		scanners = append(scanners, list.NewScanner())
	}

	return &RuleStorageScanner{
		Scanners: scanners,
	}
}

// ListsCount returns the number of rule lists in the storage.
func (s *RuleStorage) ListsCount() (n int) {
	return len(s.lists)
}

// Close closes the storage instance.
func (s *RuleStorage) Close() (err error) {
	if len(s.lists) == 0 {
		return nil
	}

	var errs []error
	for _, l := range s.lists {
		err = l.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Annotate(errors.Join(errs...), "closing rule lists: %w")
}
