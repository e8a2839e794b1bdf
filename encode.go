package allocation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodeHoldings reads a holdings table, a JSON array of holdings.
func DecodeHoldings(r io.Reader) (Holdings, error) {
	var hs Holdings
	if err := json.NewDecoder(r).Decode(&hs); err != nil {
		return nil, fmt.Errorf("cannot decode holdings: %w", err)
	}
	return hs, nil
}

// EncodeHoldings writes hs as an indented JSON array, easy to edit by hand.
func EncodeHoldings(w io.Writer, hs Holdings) error {
	if hs == nil {
		hs = Holdings{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(hs)
}

// DecodeTargets reads a target allocation, a JSON array of targets.
func DecodeTargets(r io.Reader) (TargetAllocation, error) {
	var ta TargetAllocation
	if err := json.NewDecoder(r).Decode(&ta); err != nil {
		return nil, fmt.Errorf("cannot decode targets: %w", err)
	}
	return ta, nil
}

// EncodeTargets writes ta as an indented JSON array.
func EncodeTargets(w io.Writer, ta TargetAllocation) error {
	if ta == nil {
		ta = TargetAllocation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ta)
}

// LoadHoldings decodes the holdings file at path.
func LoadHoldings(path string) (Holdings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeHoldings(f)
}

// SaveHoldings encodes hs into the file at path, replacing it.
func SaveHoldings(path string, hs Holdings) error {
	return writeFile(path, func(w io.Writer) error { return EncodeHoldings(w, hs) })
}

// LoadTargets decodes the targets file at path.
func LoadTargets(path string) (TargetAllocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTargets(f)
}

// SaveTargets encodes ta into the file at path, replacing it.
func SaveTargets(path string, ta TargetAllocation) error {
	return writeFile(path, func(w io.Writer) error { return EncodeTargets(w, ta) })
}

// writeFile writes to a temporary file renamed over path, so that a failed
// encoding does not truncate the user's file.
func writeFile(path string, encode func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
