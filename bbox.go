package lightdemo

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// BBox is an axis aligned box.
type BBox struct {
	Mins mgl32.Vec3
	Maxs mgl32.Vec3
}

// BBoxFromPositionAndSize builds a cube of edge size centered on center.
func BBoxFromPositionAndSize(center mgl32.Vec3, size float32) BBox {
	half := mgl32.Vec3{size / 2, size / 2, size / 2}
	return BBox{Mins: center.Sub(half), Maxs: center.Add(half)}
}

func (b BBox) Center() mgl32.Vec3 {
	return b.Mins.Add(b.Maxs).Mul(0.5)
}

func (b BBox) Size() mgl32.Vec3 {
	return b.Maxs.Sub(b.Mins)
}

func (b BBox) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		lo, hi := min(b.Mins[i], b.Maxs[i]), max(b.Mins[i], b.Maxs[i])
		if p[i] < lo || p[i] > hi {
			return false
		}
	}
	return true
}

// RandomPointInside draws a point uniformly from the box volume.
func (b BBox) RandomPointInside(rng *Random) mgl32.Vec3 {
	return mgl32.Vec3{
		rng.Range(b.Mins.X(), b.Maxs.X()),
		rng.Range(b.Mins.Y(), b.Maxs.Y()),
		rng.Range(b.Mins.Z(), b.Maxs.Z()),
	}
}

// Random is the shared random source resource.
type Random struct {
	src *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{src: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float32 returns a number in [0, 1).
func (r *Random) Float32() float32 {
	return r.src.Float32()
}

// Range returns a number between lo and hi.
func (r *Random) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*r.src.Float32()
}

type RandomModule struct {
	Seed uint64
}

// Install reseeds the Random resource if another module already added a
// default one.
func (m RandomModule) Install(app *App, cmd *Commands) {
	if r := resourceOf[Random](app); r != nil {
		*r = *NewRandom(m.Seed)
		return
	}
	cmd.AddResources(NewRandom(m.Seed))
}

// ensureRandom returns the Random resource, adding one seeded with 0 when
// none is installed.
func ensureRandom(app *App, cmd *Commands) *Random {
	if r := resourceOf[Random](app); r != nil {
		return r
	}
	r := NewRandom(0)
	cmd.AddResources(r)
	return r
}
