package catalog

// defaultDescriptors is the catalog shipped with the app: one model per
// category and perspective.
var defaultDescriptors = []Descriptor{
	NewDescriptor("health-self-q4_k_m.gguf", "건강 요약 (본인)", CategoryHealth, PerspectiveSelf),
	NewDescriptor("health-other-q4_k_m.gguf", "건강 응원 (보호자)", CategoryHealth, PerspectiveOther),
	NewDescriptor("health-short-q4_k_m.gguf", "건강 한마디", CategoryHealth, PerspectiveOtherShort),
	NewDescriptor("wellness-self-q4_k_m.gguf", "활동 요약 (본인)", CategoryWellness, PerspectiveSelf),
	NewDescriptor("wellness-other-q4_k_m.gguf", "활동 응원 (보호자)", CategoryWellness, PerspectiveOther),
	NewDescriptor("wellness-short-q4_k_m.gguf", "활동 한마디", CategoryWellness, PerspectiveOtherShort),
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultDescriptors)
	if err != nil {
		// built-in entries are static; a failure here is a programming error
		panic(err)
	}
	return c
}
