package heapsnapshot

// record is the on-disk shape of one JSON line. Kind selects which of the
// remaining fields are populated; unused fields are omitted on write.
type record struct {
	Kind string `json:"kind"` // "object", "reference", or "root"

	// kind == "object"
	Address  uint64 `json:"address,omitempty"`
	Size     uint64 `json:"size,omitempty"`
	TypeName string `json:"type_name,omitempty"`

	// kind == "reference"
	From uint64 `json:"from,omitempty"`
	To   uint64 `json:"to,omitempty"`

	// kind == "root"
	RootAddress uint64 `json:"root_address,omitempty"`
}

// Snapshot is a fully loaded, in-memory heap snapshot.
type Snapshot struct {
	objects    []objectRecord
	references []referenceRecord
	roots      []uint64
	typeNames  map[uint64]string
}

type objectRecord struct {
	Address uint64
	Size    uint64
}

type referenceRecord struct {
	From uint64
	To   uint64
}
