package lightdemo

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrDuplicateName = errors.New("duplicate scene object name")

// SceneConfig describes a scene of light rigs and wander volumes.
type SceneConfig struct {
	Seed      uint64         `yaml:"seed"`
	Gizmos    bool           `yaml:"gizmos"`
	FixedStep float64        `yaml:"fixed_step"` // seconds per frame; 0 uses the wall clock
	Rigs      []RigConfig    `yaml:"rigs"`
	Wanderers []WanderConfig `yaml:"wanderers"`
}

type TransformConfig struct {
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"` // Euler XYZ, degrees
	Scale    [3]float32 `yaml:"scale"`
}

type RigConfig struct {
	Name           string          `yaml:"name"`
	Transform      TransformConfig `yaml:"transform"`
	Radius         float32         `yaml:"radius"`
	RPM            float32         `yaml:"rpm"`
	LerpSpeed      float32         `yaml:"lerp_speed"`
	LightCount     int             `yaml:"light_count"`
	ShadowsEnabled bool            `yaml:"shadows"`
	ConeOuter      float32         `yaml:"cone_outer"`
	MaxDistance    float32         `yaml:"max_distance"`
	Attenuation    float32         `yaml:"attenuation"`
	Enabled        bool            `yaml:"enabled"`
}

type BoundsConfig struct {
	Mins [3]float32 `yaml:"mins"`
	Maxs [3]float32 `yaml:"maxs"`
}

type WanderConfig struct {
	Name       string            `yaml:"name"`
	Transform  TransformConfig   `yaml:"transform"`
	Bounds     BoundsConfig      `yaml:"bounds"`
	PruneStale bool              `yaml:"prune_stale"`
	Lights     []SpotLightConfig `yaml:"lights"`
}

// SpotLightConfig is a light parented to a wander volume; Position is
// local to it.
type SpotLightConfig struct {
	Position    [3]float32 `yaml:"position"`
	Color       string     `yaml:"color"`
	ConeOuter   float32    `yaml:"cone_outer"`
	Range       float32    `yaml:"range"`
	Attenuation float32    `yaml:"attenuation"`
	Shadows     bool       `yaml:"shadows"`
}

func (c *TransformConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain TransformConfig
	p := plain{Scale: [3]float32{1, 1, 1}}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = TransformConfig(p)
	return nil
}

func (c *RigConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain RigConfig
	rig := NewLightRigComponent(3)
	p := plain{
		Transform:      TransformConfig{Scale: [3]float32{1, 1, 1}},
		Radius:         rig.Radius,
		RPM:            rig.RPM,
		LerpSpeed:      rig.LerpSpeed,
		LightCount:     rig.LightCount(),
		ShadowsEnabled: rig.ShadowsEnabled,
		ConeOuter:      rig.ConeOuter,
		MaxDistance:    rig.MaxDistance,
		Attenuation:    rig.Attenuation,
		Enabled:        rig.Enabled,
	}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = RigConfig(p)
	return nil
}

func (c *WanderConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain WanderConfig
	b := NewLightWanderComponent().Bounds
	p := plain{
		Transform: TransformConfig{Scale: [3]float32{1, 1, 1}},
		Bounds:    BoundsConfig{Mins: b.Mins, Maxs: b.Maxs},
	}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = WanderConfig(p)
	return nil
}

func (c *SpotLightConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain SpotLightConfig
	p := plain{Color: "#ffffff", ConeOuter: 5, Range: 500, Attenuation: 1}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = SpotLightConfig(p)
	return nil
}

func LoadSceneConfig(filename string) (*SceneConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", filename, err)
	}
	cfg, err := ParseSceneConfig(data)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", filename, err)
	}
	return cfg, nil
}

func ParseSceneConfig(data []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.nameUnnamed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// nameUnnamed gives every object without a name a random one. Such objects
// cannot be matched across reloads, so a reload respawns them.
func (cfg *SceneConfig) nameUnnamed() {
	for i := range cfg.Rigs {
		if cfg.Rigs[i].Name == "" {
			cfg.Rigs[i].Name = "rig-" + uuid.NewString()
		}
	}
	for i := range cfg.Wanderers {
		if cfg.Wanderers[i].Name == "" {
			cfg.Wanderers[i].Name = "wanderer-" + uuid.NewString()
		}
	}
}

// Validate checks names are unique and light colors parse.
func (cfg *SceneConfig) Validate() error {
	names := make(set[string])
	claim := func(name string) error {
		if name == "" {
			return nil
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		names[name] = struct{}{}
		return nil
	}

	for _, rig := range cfg.Rigs {
		if err := claim(rig.Name); err != nil {
			return err
		}
	}
	for _, w := range cfg.Wanderers {
		if err := claim(w.Name); err != nil {
			return err
		}
		for i, light := range w.Lights {
			if _, err := ParseColor(light.Color); err != nil {
				return fmt.Errorf("wanderer %q light %d: color %q: %w", w.Name, i, light.Color, err)
			}
		}
	}
	return nil
}

func (c TransformConfig) toTransform() TransformComponent {
	return TransformComponent{
		Position: mgl32.Vec3(c.Position),
		Rotation: mgl32.AnglesToQuat(
			mgl32.DegToRad(c.Rotation[0]),
			mgl32.DegToRad(c.Rotation[1]),
			mgl32.DegToRad(c.Rotation[2]),
			mgl32.XYZ,
		),
		Scale: mgl32.Vec3(c.Scale),
	}
}

func (c RigConfig) applyTo(r *LightRigComponent) {
	r.Radius = c.Radius
	r.RPM = c.RPM
	r.LerpSpeed = c.LerpSpeed
	r.ShadowsEnabled = c.ShadowsEnabled
	r.ConeOuter = c.ConeOuter
	r.MaxDistance = c.MaxDistance
	r.Attenuation = c.Attenuation
}

func (c WanderConfig) applyTo(w *LightWanderComponent) {
	w.Bounds = BBox{Mins: mgl32.Vec3(c.Bounds.Mins), Maxs: mgl32.Vec3(c.Bounds.Maxs)}
	w.PruneStale = c.PruneStale
}

func (c SpotLightConfig) component() SpotLightComponent {
	color, err := ParseColor(c.Color)
	if err != nil {
		color = White
	}
	return SpotLightComponent{
		Color:                color,
		ConeOuter:            c.ConeOuter,
		ConeInner:            c.ConeOuter * 0.8,
		Range:                c.Range,
		QuadraticAttenuation: c.Attenuation,
		ShadowsEnabled:       c.Shadows,
	}
}
