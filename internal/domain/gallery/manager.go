package gallery

import (
	"errors"
	"sort"
)

/*
	Image collection manager
	------------------------
	- Owns the in-memory ordering of one record's images.
	- Invariant: the element at position 0 is the unique primary image,
	  re-established after every structural change.
	- Persistence happens outside: callers write the full ordering back in
	  one call, so replaying writes in any order converges.
*/

var (
	// ErrPrimaryImageProtected: the primary image cannot be deleted while
	// other images remain; the caller must set a different primary first.
	ErrPrimaryImageProtected = errors.New("primary image cannot be deleted while other images remain")
	ErrImageNotFound         = errors.New("image not found")
	ErrIndexOutOfRange       = errors.New("index out of range")
)

// Event signals a structural change consumers must react to. A primary
// change is the sole trigger for requesting derived-metadata regeneration;
// the manager only emits it.
type Event int

const (
	EventPrimaryChanged Event = iota + 1
	EventCollectionEmptied
)

type Manager struct {
	images []Image
}

// NewManager normalizes whatever ordering came back from the store: sort by
// position, then renumber so the invariant holds even after a partial write.
func NewManager(images []Image) *Manager {
	imgs := make([]Image, len(images))
	copy(imgs, images)
	sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Position < imgs[j].Position })
	m := &Manager{images: imgs}
	m.renumber()
	return m
}

func (m *Manager) Len() int {
	return len(m.images)
}

func (m *Manager) Images() []Image {
	out := make([]Image, len(m.images))
	copy(out, m.images)
	return out
}

// OrderedIDs is the full ordering, ready for one atomic multi-row write.
func (m *Manager) OrderedIDs() []string {
	ids := make([]string, len(m.images))
	for i, img := range m.images {
		ids[i] = img.ID
	}
	return ids
}

func (m *Manager) PrimaryID() string {
	if len(m.images) == 0 {
		return ""
	}
	return m.images[0].ID
}

// Append places the image at the end; it becomes primary only when the
// collection was empty.
func (m *Manager) Append(img Image) Image {
	img.Position = len(m.images)
	img.IsPrimary = len(m.images) == 0
	m.images = append(m.images, img)
	return img
}

func (m *Manager) Reorder(fromIndex, toIndex int) ([]Event, error) {
	n := len(m.images)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return nil, ErrIndexOutOfRange
	}
	before := m.PrimaryID()

	moved := m.images[fromIndex]
	rest := append(m.images[:fromIndex:fromIndex], m.images[fromIndex+1:]...)
	m.images = append(rest[:toIndex:toIndex], append([]Image{moved}, rest[toIndex:]...)...)
	m.renumber()

	if m.PrimaryID() != before {
		return []Event{EventPrimaryChanged}, nil
	}
	return nil, nil
}

// Delete removes one image. Deleting the primary is rejected while other
// images remain; deleting the sole remaining image is allowed and reported
// through EventCollectionEmptied so the caller can clear anything derived
// from image content.
func (m *Manager) Delete(id string) ([]Event, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, ErrImageNotFound
	}
	if idx == 0 && len(m.images) > 1 {
		return nil, ErrPrimaryImageProtected
	}

	m.images = append(m.images[:idx], m.images[idx+1:]...)
	m.renumber()

	if len(m.images) == 0 {
		return []Event{EventCollectionEmptied}, nil
	}
	return nil, nil
}

// Replace swaps the URL only; position and primary flag stay. Replacing the
// current primary still means the representative content changed.
func (m *Manager) Replace(id, newURL string) ([]Event, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, ErrImageNotFound
	}
	m.images[idx].URL = newURL
	if idx == 0 {
		return []Event{EventPrimaryChanged}, nil
	}
	return nil, nil
}

// SetPrimary moves the target to the front, shifting the others down while
// keeping their relative order. No-op when the target already is primary.
func (m *Manager) SetPrimary(id string) ([]Event, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, ErrImageNotFound
	}
	if idx == 0 {
		return nil, nil
	}

	target := m.images[idx]
	rest := append(m.images[:idx:idx], m.images[idx+1:]...)
	m.images = append([]Image{target}, rest...)
	m.renumber()

	return []Event{EventPrimaryChanged}, nil
}

func (m *Manager) indexOf(id string) int {
	for i, img := range m.images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// renumber recomputes every position from scratch and re-applies the
// primary invariant.
func (m *Manager) renumber() {
	for i := range m.images {
		m.images[i].Position = i
		m.images[i].IsPrimary = i == 0
	}
}
