package engine

// StandardMaterial is a minimal surface description.
type StandardMaterial struct {
	Name string

	DiffuseColor  Color3
	SpecularColor Color3
	EmissiveColor Color3
	Alpha         float32

	DiffuseTexture    *Texture
	ReflectionTexture *CubeTexture

	BackFaceCulling bool
	DisableLighting bool
}

// NewStandardMaterial returns a white, lit, back-face culled material.
func NewStandardMaterial(name string) *StandardMaterial {
	return &StandardMaterial{
		Name:            name,
		DiffuseColor:    NewColor3(1, 1, 1),
		SpecularColor:   NewColor3(1, 1, 1),
		Alpha:           1,
		BackFaceCulling: true,
	}
}

// isSkybox reports whether m is drawn as a background cube map.
func (m *StandardMaterial) isSkybox() bool {
	return m != nil && m.ReflectionTexture != nil && m.ReflectionTexture.CoordinatesMode == SkyboxMode
}
