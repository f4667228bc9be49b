package cmdset

import (
	"encoding/binary"
	"fmt"

	"github.com/nisheethbhat/nvmeqemu/hostio"
)

// prpEntriesPerPage is the number of 8-byte PRP entries a chained PRP list
// page holds; the final entry is reserved as a pointer to the next list.
const prpEntriesPerPage = PageSize / 8

// Chunk is one contiguous guest-physical span making up part of a command's
// data transfer, as resolved by Walk.
type Chunk struct {
	GPA uint64
	Len int
}

// Walk resolves a command's PRP1/PRP2 pair into the ordered list of guest
// physical chunks backing a total-byte transfer, per spec.md §4.5's three
// cases: a single page, two pages, or a chained PRP list.
//
// PRP1 is always assumed page-aligned, matching spec.md's simplified model
// (no sub-page starting offset support).
func Walk(host hostio.HostOps, total int, prp1, prp2 uint64) ([]Chunk, error) {
	if total <= 0 {
		return nil, fmt.Errorf("cmdset: prp walk: non-positive length %d", total)
	}
	if prp1 == 0 {
		return nil, fmt.Errorf("cmdset: prp walk: prp1 is null")
	}

	if total <= PageSize {
		return []Chunk{{GPA: prp1, Len: total}}, nil
	}

	remaining := total - PageSize
	chunks := []Chunk{{GPA: prp1, Len: PageSize}}

	if remaining <= PageSize {
		if prp2 == 0 {
			return nil, fmt.Errorf("cmdset: prp walk: prp2 is null with %d bytes remaining", remaining)
		}
		return append(chunks, Chunk{GPA: prp2, Len: remaining}), nil
	}

	// More than two pages: prp2 points at a chained list of 8-byte PRP
	// entries, the last of which chains to the next list page when more
	// entries are needed.
	if prp2 == 0 {
		return nil, fmt.Errorf("cmdset: prp walk: prp2 is null with %d bytes remaining", remaining)
	}

	listGPA := prp2
	for remaining > 0 {
		list := make([]byte, PageSize)
		if err := host.DMARead(listGPA, list); err != nil {
			return nil, fmt.Errorf("cmdset: prp walk: reading prp list at %#x: %w", listGPA, err)
		}

		entries := prpEntriesPerPage
		lastIsChain := remaining > PageSize*(prpEntriesPerPage-1)
		if lastIsChain {
			entries--
		}

		for i := 0; i < entries && remaining > 0; i++ {
			entry := binary.LittleEndian.Uint64(list[i*8 : i*8+8])
			if entry == 0 {
				return nil, fmt.Errorf("cmdset: prp walk: null entry in prp list at %#x index %d", listGPA, i)
			}
			n := PageSize
			if remaining < n {
				n = remaining
			}
			chunks = append(chunks, Chunk{GPA: entry, Len: n})
			remaining -= n
		}

		if remaining == 0 {
			break
		}

		next := binary.LittleEndian.Uint64(list[(prpEntriesPerPage-1)*8:])
		if next == 0 {
			return nil, fmt.Errorf("cmdset: prp walk: missing chain pointer at %#x with %d bytes remaining", listGPA, remaining)
		}
		listGPA = next
	}

	return chunks, nil
}

// ReadAll resolves a command's PRP pair and copies the full transfer out of
// guest memory into a single contiguous buffer.
func ReadAll(host hostio.HostOps, total int, prp1, prp2 uint64) ([]byte, error) {
	chunks, err := Walk(host, total, prp1, prp2)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		buf := make([]byte, c.Len)
		if err := host.DMARead(c.GPA, buf); err != nil {
			return nil, fmt.Errorf("cmdset: prp read chunk at %#x: %w", c.GPA, err)
		}
		out = append(out, buf...)
	}
	return out, nil
}

// WriteAll resolves a command's PRP pair and scatters data out to guest
// memory across the resolved chunks.
func WriteAll(host hostio.HostOps, data []byte, prp1, prp2 uint64) error {
	chunks, err := Walk(host, len(data), prp1, prp2)
	if err != nil {
		return err
	}
	off := 0
	for _, c := range chunks {
		if err := host.DMAWrite(c.GPA, data[off:off+c.Len]); err != nil {
			return fmt.Errorf("cmdset: prp write chunk at %#x: %w", c.GPA, err)
		}
		off += c.Len
	}
	return nil
}
