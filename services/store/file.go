package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"panelcode-go/errcode"
)

// OpenFile returns a store persisted as one CBOR document at path. A missing
// file is an empty store; writes replace the file atomically.
func OpenFile(path string) (*KV, error) {
	kv := &KV{}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errcode.Wrap(errcode.StoreFailed, "store.open", err)
	default:
		if err := cbor.Unmarshal(raw, &kv.img); err != nil {
			return nil, errcode.Wrap(errcode.StoreFailed, "store.decode", err)
		}
	}
	kv.img.ensure()

	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	kv.persist = func(im image) error {
		b, err := enc.Marshal(im)
		if err != nil {
			return err
		}
		return writeAtomic(path, b)
	}
	return kv, nil
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".store-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
