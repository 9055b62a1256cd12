package rbxfile

// SharedStringEntry is one blob of a SharedStringTable.
type SharedStringEntry struct {
	Key  string
	Data []byte
}

// SharedStringTable stores each distinct shared blob once, keyed by the
// base64 MD5 digest of its contents. Entries keep insertion order.
type SharedStringTable struct {
	keys []string
	data map[string][]byte
}

// NewSharedStringTable creates an empty table.
func NewSharedStringTable() *SharedStringTable {
	return &SharedStringTable{
		keys: nil,
		data: make(map[string][]byte),
	}
}

// Add stores s if its content is not already present and returns its key.
// added reports whether a new entry was created.
func (t *SharedStringTable) Add(s SharedString) (key string, added bool) {
	key = s.Key()
	if _, ok := t.data[key]; ok {
		return key, false
	}
	t.keys = append(t.keys, key)
	t.data[key] = s.Bytes()
	return key, true
}

// Put stores data under an explicit key, as read from a document. An
// existing key keeps its first payload.
func (t *SharedStringTable) Put(key string, data []byte) {
	if _, ok := t.data[key]; ok {
		return
	}
	t.keys = append(t.keys, key)
	t.data[key] = data
}

// Get returns the payload stored under key.
func (t *SharedStringTable) Get(key string) ([]byte, bool) {
	data, ok := t.data[key]
	return data, ok
}

// Lookup returns the SharedString stored under key.
func (t *SharedStringTable) Lookup(key string) (SharedString, bool) {
	data, ok := t.data[key]
	if !ok {
		return SharedString{}, false
	}
	return SharedString{data: data}, true
}

// Len returns the number of distinct blobs.
func (t *SharedStringTable) Len() int {
	return len(t.keys)
}

// Entries returns the blobs in insertion order.
func (t *SharedStringTable) Entries() []SharedStringEntry {
	entries := make([]SharedStringEntry, len(t.keys))
	for i, key := range t.keys {
		entries[i] = SharedStringEntry{Key: key, Data: t.data[key]}
	}
	return entries
}
