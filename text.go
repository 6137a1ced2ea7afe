package mdict

// cachedDefinition pairs a decoded definition with the canonical (stored)
// key it was found under, so a cache hit still returns the same word a
// fresh lookup would.
type cachedDefinition struct {
	word       string
	definition string
}

// TextDictionary reads a .mdx file: words mapped to HTML/text definitions.
type TextDictionary struct {
	s     *store
	cache *lookupCache[cachedDefinition]
}

// OpenText opens an .mdx file, parsing its header and building its key and
// record indexes. The indexes are immutable after this returns, so a single
// TextDictionary may serve concurrent lookups.
func OpenText(path string) (*TextDictionary, error) {
	s, err := openStore(path, false)
	if err != nil {
		return nil, err
	}
	return &TextDictionary{s: s, cache: newLookupCache[cachedDefinition]()}, nil
}

// Lookup returns the canonical (stored) form of the word and its decoded
// definition text. found is false, with a nil error, when word is simply
// absent.
func (d *TextDictionary) Lookup(word string) (canonicalWord, definition string, found bool, err error) {
	normKey := d.s.normalize(word)
	if cached, ok := d.cache.get(normKey); ok {
		return cached.word, cached.definition, true, nil
	}

	canonicalKey, offset, length, found, err := d.s.search(word)
	if err != nil || !found {
		return "", "", false, err
	}

	raw, err := d.s.readRecord(offset, length)
	if err != nil {
		return "", "", false, err
	}
	definition, err = d.s.header.codec.decode(raw)
	if err != nil {
		return "", "", false, err
	}

	d.cache.put(normKey, cachedDefinition{word: canonicalKey, definition: definition})
	return canonicalKey, definition, true, nil
}

// PrefixSearch returns up to cap keys that begin with prefix, in file
// order, for type-ahead lists.
func (d *TextDictionary) PrefixSearch(prefix string, cap int) ([]string, error) {
	return d.s.prefixSearch(prefix, cap)
}

// HeaderInfo returns the dictionary's header metadata.
func (d *TextDictionary) HeaderInfo() HeaderInfo { return d.s.headerInfo() }

// CacheLen reports how many definitions are currently cached; exists so
// tests and collaborators can observe the LRU's bounded-size invariant.
func (d *TextDictionary) CacheLen() int { return d.cache.len() }

// Close releases the TextDictionary. It never holds a persistent file
// handle (each request opens its own), so this is a no-op kept for API
// symmetry.
func (d *TextDictionary) Close() error { return d.s.close() }
