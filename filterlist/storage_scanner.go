package filterlist

import "github.com/AdguardTeam/urldedup/rules"

// RuleStorageScanner scans multiple RuleScanner instances one after another.
// The rule index is built from the rule index in the list and the list ID:
// the lower 4 bytes are the rule index in the list, the higher 4 bytes are the
// list ID.
type RuleStorageScanner struct {
	// Scanners is the list of list scanners backing this combined scanner.
	Scanners []*RuleScanner

	currentScanner    *RuleScanner
	currentScannerIdx int
}

// Scan advances to the next rule.  It returns false when all the scanners are
// exhausted or when one of them fails, see [RuleStorageScanner.Err].
func (s *RuleStorageScanner) Scan() (ok bool) {
	if len(s.Scanners) == 0 {
		return false
	}

	if s.currentScanner == nil {
		s.currentScannerIdx = 0
		s.currentScanner = s.Scanners[s.currentScannerIdx]
	}

	for {
		if s.currentScanner.Scan() {
			return true
		}

		// Don't proceed to the next list after a failure.
		if s.currentScanner.Err() != nil {
			return false
		}

		// Take the next scanner or just return false if there's nothing
		// more.
		if s.currentScannerIdx == len(s.Scanners)-1 {
			return false
		}

		s.currentScannerIdx++
		s.currentScanner = s.Scanners[s.currentScannerIdx]
	}
}

// Rule returns the current rule and its storage index.
func (s *RuleStorageScanner) Rule() (r *rules.Rule, storageIdx int64) {
	if s.currentScanner == nil {
		return nil, 0
	}

	r, idx := s.currentScanner.Rule()
	if r == nil {
		return nil, 0
	}

	return r, ruleListIdxToStorageIdx(s.currentScanner.listID, idx)
}

// Err returns the error of the scanner that has failed, if any.
func (s *RuleStorageScanner) Err() (err error) {
	if s.currentScanner == nil {
		return nil
	}

	return s.currentScanner.Err()
}

// ruleListIdxToStorageIdx converts pair of listID and rule list index to a
// single int64 "storage index".
func ruleListIdxToStorageIdx(listID, ruleIdx int) (storageIdx int64) {
	return int64(listID)<<32 | int64(ruleIdx)&0xFFFFFFFF
}

// StorageIdxToRuleListIdx converts the "storage index" to two integers: the
// rule list identifier and the index of the rule in the list.
func StorageIdxToRuleListIdx(storageIdx int64) (listID, ruleIdx int) {
	return int(storageIdx >> 32), int(int32(storageIdx))
}
