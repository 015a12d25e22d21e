package compositor

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/compositor/render"
)

// quadKey is the memoization record for an entry's vertex buffer: the
// layer placement and the texture size the buffer was built from.
type quadKey struct {
	frame       Rect
	layout      Layout
	transform   Affine
	texWidth    int
	texHeight   int
	placeholder bool
}

// quadMemo caches the vertex buffer for one entry. A valid memo with a nil
// buffer means the quad is empty (for example a frame outside the output).
type quadMemo struct {
	key    quadKey
	buffer *render.Buffer
	valid  bool
}

// entry is the Worker-owned cache state for one Layer.
type entry struct {
	slot  int
	layer *Layer

	// texture is the last fetched texture or a placeholder. Published
	// textures are never written again, so a load is always a whole frame.
	texture atomic.Pointer[render.Texture]

	// gate admits at most one in-flight fetch.
	gate sync.Mutex

	// memo is guarded by Worker.mu.
	memo quadMemo

	fetches    atomic.Uint64
	misses     atomic.Uint64
	drops      atomic.Uint64
	quadBuilds atomic.Uint64
}

// drawItem is one entry's contribution to a render pass, captured under
// Worker.mu so that its texture and geometry belong together.
type drawItem struct {
	slot    int
	texture *render.Texture
	buffer  *render.Buffer
	key     quadKey
}

// quad returns the entry's vertex buffer for the given placement and
// texture, rebuilding it only when one of the memo inputs changed.
// Caller must hold Worker.mu.
func (e *entry) quad(rc *render.Context, st layerState, tex *render.Texture, placeholder bool, viewport Size) (*render.Buffer, quadKey) {
	key := quadKey{
		frame:       st.frame,
		layout:      st.layout,
		transform:   st.transform,
		texWidth:    tex.Width(),
		texHeight:   tex.Height(),
		placeholder: placeholder,
	}
	if e.memo.valid && e.memo.key == key {
		return e.memo.buffer, key
	}

	layout := st.layout
	if placeholder {
		// Placeholders always fill the whole frame.
		layout = Centered()
	}
	dst, crop := layout.Resolve(st.frame, Sz(float64(key.texWidth), float64(key.texHeight)))
	e.memo = quadMemo{
		key:    key,
		buffer: rc.MakeQuad(dst, &crop, st.transform, viewport),
		valid:  true,
	}
	e.quadBuilds.Add(1)
	return e.memo.buffer, key
}
