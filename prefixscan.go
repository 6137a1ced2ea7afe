package mdict

import "io"

// prefixSearch walks the key-block array in file order, decompressing only
// the blocks whose [first,last] range could contain a key with the given
// prefix, and collects matches up to cap.
func (s *store) prefixSearch(prefix string, cap int) ([]string, error) {
	if cap <= 0 {
		cap = 20
	}
	normPrefix := normalizeForPrefix(prefix, s.header)
	upperBound := normPrefix + "\xff"

	var results []string
	err := s.withFile(func(f io.ReadSeeker) error {
		for blockIdx, block := range s.index.keyBlocks {
			if len(results) >= cap {
				return nil
			}
			// Fold the stored first/last keys the same way for the range
			// check, since normPrefix/upperBound are already folded.
			blockLast := normalizeForPrefix(block.LastKey, s.header)
			blockFirst := normalizeForPrefix(block.FirstKey, s.header)
			if blockLast < normPrefix || blockFirst >= upperBound {
				continue
			}

			entries, err := s.readKeyBlockEntries(f, blockIdx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				folded := normalizeForPrefix(e.key, s.header)
				if len(folded) >= len(normPrefix) && folded[:len(normPrefix)] == normPrefix {
					results = append(results, e.key)
					if len(results) >= cap {
						break
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
