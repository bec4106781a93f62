// Package store is the panel's persistent key-value collaborator. Keys live
// in namespaces that are opened read-only or read-write; every backend keeps
// the whole image in RAM and persists it on each write.
package store

import (
	"sync"

	"panelcode-go/errcode"
)

// Namespaces and keys used by the panel.
const (
	NSWifi      = "wifi"
	KeySSID     = "ssid"
	KeyPassword = "password"

	NSPanel     = "panel"
	KeyJBPlayed = "jbPlayed"
)

type Store interface {
	Open(namespace string, readOnly bool) (Namespace, error)
}

// Namespace is a handle on one namespace. Reads of absent keys return
// errcode.NotFound; writes through a read-only handle return errcode.ReadOnly.
type Namespace interface {
	GetString(key string) (string, error)
	PutString(key, value string) error
	// PutStrings writes all pairs in one persist: either every key is
	// stored or none is.
	PutStrings(kv map[string]string) error
	GetBool(key string) (bool, error)
	PutBool(key string, value bool) error
	Close() error
}

// image is the full persisted content of a store.
type image struct {
	Strings map[string]map[string]string `cbor:"s"`
	Bools   map[string]map[string]bool   `cbor:"b"`
}

func (im *image) ensure() {
	if im.Strings == nil {
		im.Strings = make(map[string]map[string]string)
	}
	if im.Bools == nil {
		im.Bools = make(map[string]map[string]bool)
	}
}

// KV is the shared store implementation; backends differ only in persist.
type KV struct {
	mu      sync.Mutex
	img     image
	persist func(image) error // nil for RAM only
}

// NewMemory returns a store that forgets everything on restart.
func NewMemory() *KV {
	kv := &KV{}
	kv.img.ensure()
	return kv
}

func (s *KV) Open(namespace string, readOnly bool) (Namespace, error) {
	if namespace == "" || len(namespace) > maxName {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "store.open", Msg: "namespace " + namespace}
	}
	return &handle{kv: s, ns: namespace, ro: readOnly}, nil
}

const maxName = 15

type handle struct {
	kv     *KV
	ns     string
	ro     bool
	closed bool
}

func (h *handle) check(key string, write bool) error {
	switch {
	case h.closed:
		return errcode.Closed
	case write && h.ro:
		return &errcode.E{C: errcode.ReadOnly, Op: "store.put", Msg: h.ns + "/" + key}
	case key == "" || len(key) > maxName:
		return &errcode.E{C: errcode.InvalidParams, Op: "store", Msg: "key " + key}
	}
	return nil
}

func (h *handle) GetString(key string) (string, error) {
	if err := h.check(key, false); err != nil {
		return "", err
	}
	h.kv.mu.Lock()
	defer h.kv.mu.Unlock()
	v, ok := h.kv.img.Strings[h.ns][key]
	if !ok {
		return "", errcode.NotFound
	}
	return v, nil
}

func (h *handle) GetBool(key string) (bool, error) {
	if err := h.check(key, false); err != nil {
		return false, err
	}
	h.kv.mu.Lock()
	defer h.kv.mu.Unlock()
	v, ok := h.kv.img.Bools[h.ns][key]
	if !ok {
		return false, errcode.NotFound
	}
	return v, nil
}

func (h *handle) PutString(key, value string) error {
	if err := h.check(key, true); err != nil {
		return err
	}
	return h.kv.update(func(im *image) {
		m := im.Strings[h.ns]
		if m == nil {
			m = make(map[string]string)
			im.Strings[h.ns] = m
		}
		m[key] = value
	})
}

func (h *handle) PutStrings(kv map[string]string) error {
	for k := range kv {
		if err := h.check(k, true); err != nil {
			return err
		}
	}
	return h.kv.update(func(im *image) {
		m := im.Strings[h.ns]
		if m == nil {
			m = make(map[string]string, len(kv))
			im.Strings[h.ns] = m
		}
		for k, v := range kv {
			m[k] = v
		}
	})
}

func (h *handle) PutBool(key string, value bool) error {
	if err := h.check(key, true); err != nil {
		return err
	}
	return h.kv.update(func(im *image) {
		m := im.Bools[h.ns]
		if m == nil {
			m = make(map[string]bool)
			im.Bools[h.ns] = m
		}
		m[key] = value
	})
}

func (h *handle) Close() error {
	h.closed = true
	return nil
}

// update applies fn and persists. On persist failure the in-RAM image is
// left as it was.
func (s *KV) update(fn func(*image)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.img.clone()
	fn(&next)
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return errcode.Wrap(errcode.StoreFailed, "store.persist", err)
		}
	}
	s.img = next
	return nil
}

func (im image) clone() image {
	out := image{
		Strings: make(map[string]map[string]string, len(im.Strings)),
		Bools:   make(map[string]map[string]bool, len(im.Bools)),
	}
	for ns, m := range im.Strings {
		c := make(map[string]string, len(m))
		for k, v := range m {
			c[k] = v
		}
		out.Strings[ns] = c
	}
	for ns, m := range im.Bools {
		c := make(map[string]bool, len(m))
		for k, v := range m {
			c[k] = v
		}
		out.Bools[ns] = c
	}
	return out
}

// PutCredentials writes both WiFi keys in a single commit.
func PutCredentials(s Store, ssid, password string) error {
	ns, err := s.Open(NSWifi, false)
	if err != nil {
		return err
	}
	defer ns.Close()
	return ns.PutStrings(map[string]string{KeySSID: ssid, KeyPassword: password})
}

// Credentials reads the WiFi keys read-only. Absent keys read as empty.
func Credentials(s Store) (ssid, password string, err error) {
	ns, err := s.Open(NSWifi, true)
	if err != nil {
		return "", "", err
	}
	defer ns.Close()
	ssid, err = ns.GetString(KeySSID)
	if err != nil && errcode.Of(err) != errcode.NotFound {
		return "", "", err
	}
	password, err = ns.GetString(KeyPassword)
	if err != nil && errcode.Of(err) != errcode.NotFound {
		return "", "", err
	}
	return ssid, password, nil
}
