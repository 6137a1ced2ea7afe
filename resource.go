package mdict

// ResourceArchive reads an .mdd file: virtual paths mapped to opaque
// resource bytes, such as images or audio referenced from .mdx definitions.
type ResourceArchive struct {
	s     *store
	cache *lookupCache[[]byte]
}

// OpenResource opens an .mdd file the same way OpenText opens an .mdx file.
func OpenResource(path string) (*ResourceArchive, error) {
	s, err := openStore(path, true)
	if err != nil {
		return nil, err
	}
	return &ResourceArchive{s: s, cache: newLookupCache[[]byte]()}, nil
}

// Locate returns the raw bytes of the named resource. name may be given
// with or without its leading '/'; both resolve to the same entry.
func (a *ResourceArchive) Locate(name string) ([]byte, bool, error) {
	normKey := a.s.normalize(name)
	if data, ok := a.cache.get(normKey); ok {
		return data, true, nil
	}

	_, offset, length, found, err := a.s.search(name)
	if err != nil || !found {
		return nil, false, err
	}

	data, err := a.s.readRecord(offset, length)
	if err != nil {
		return nil, false, err
	}

	a.cache.put(normKey, data)
	return data, true, nil
}

// HeaderInfo returns the archive's header metadata.
func (a *ResourceArchive) HeaderInfo() HeaderInfo { return a.s.headerInfo() }

// CacheLen reports how many resources are currently cached.
func (a *ResourceArchive) CacheLen() int { return a.cache.len() }

// Close releases the ResourceArchive; see TextDictionary.Close.
func (a *ResourceArchive) Close() error { return a.s.close() }
