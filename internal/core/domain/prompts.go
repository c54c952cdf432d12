package domain

// StylePrompts maps a style to the prompt sent to a remote generator.
type StylePrompts map[Style]string

// For returns the prompt for a style, falling back to the ink prompt for
// styles the remote side has no dedicated template for.
func (p StylePrompts) For(style Style) string {
	if prompt, ok := p[style]; ok {
		return prompt
	}
	return p[StyleInk]
}

// DefaultStylePrompts returns the built-in prompt templates. Individual
// entries can be overridden through configuration.
func DefaultStylePrompts() StylePrompts {
	return StylePrompts{
		StylePencil: "convert this photo into a pencil sketch, keep the facial features " +
			"sharp and fully recognizable, fine graphite line work, soft shading",
		StyleAnime: "Japanese anime style colored illustration, clean precise linework, " +
			"rich saturated cel-shaded colors, detailed layered hair with distinct depth, " +
			"large expressive eyes with bright highlights, professional anime aesthetics " +
			"with clean black outlines",
		StyleInk: "traditional Chinese ink wash painting with light color saturation, " +
			"delicate brushwork, layered hair strands with clear spatial separation, " +
			"soft pastel gradation, refined Sumi-e style with muted subtle colors",
		StyleVivid: "vibrant colored sketch, pencil sketch foundation with subtle pastel " +
			"color accents, clear sketch lines, muted color palette over detailed " +
			"graphite work, balanced monochrome and light color layers",
	}
}

// DefaultNegativePrompt steers the remote generator away from degraded output.
const DefaultNegativePrompt = "low resolution, blurry, distorted, deformed, altered facial features"
