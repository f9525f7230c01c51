package heapsnapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Load reads a line-delimited JSON snapshot from r into memory.
func Load(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{typeNames: make(map[uint64]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("heapsnapshot: line %d: %w", lineNo, err)
		}

		switch rec.Kind {
		case "object":
			snap.objects = append(snap.objects, objectRecord{Address: rec.Address, Size: rec.Size})
			if rec.TypeName != "" {
				snap.typeNames[rec.Address] = rec.TypeName
			}
		case "reference":
			snap.references = append(snap.references, referenceRecord{From: rec.From, To: rec.To})
		case "root":
			snap.roots = append(snap.roots, rec.RootAddress)
		default:
			return nil, fmt.Errorf("heapsnapshot: line %d: unknown record kind %q", lineNo, rec.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("heapsnapshot: %w", err)
	}

	return snap, nil
}

// EnumerateObjects implements domtree.HeapWalker.
func (s *Snapshot) EnumerateObjects(ctx context.Context, fn func(addr uint64, size uint64) error) error {
	for _, obj := range s.objects {
		if err := fn(obj.Address, obj.Size); err != nil {
			return err
		}
	}
	return nil
}

// EnumerateReferences implements domtree.HeapWalker.
func (s *Snapshot) EnumerateReferences(ctx context.Context, fn func(from, to uint64) error) error {
	for _, ref := range s.references {
		if err := fn(ref.From, ref.To); err != nil {
			return err
		}
	}
	return nil
}

// EnumerateRoots implements domtree.HeapWalker.
func (s *Snapshot) EnumerateRoots(ctx context.Context, fn func(addr uint64) error) error {
	for _, root := range s.roots {
		if err := fn(root); err != nil {
			return err
		}
	}
	return nil
}

// TypeName implements domtree.TypeNameResolver. It returns "" for an
// address that had no type_name field recorded.
func (s *Snapshot) TypeName(addr uint64) string {
	return s.typeNames[addr]
}
