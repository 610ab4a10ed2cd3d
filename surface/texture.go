// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"path/filepath"
	"slices"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/internal/imageload"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// NewTexture uploads img as a texture.
func (s *Surface) NewTexture(label string, img image.Image) (render.Texture, error) {
	w, h, pix := imageload.Pixels(img)
	t, err := s.dev.CreateTexture(render.TextureDesc{Label: label, Width: w, Height: h}, pix)
	if err != nil {
		return nil, fmt.Errorf("surface: texture %q: %w", label, err)
	}
	return t, nil
}

// LoadTexture decodes the image file at path and uploads it.
func (s *Surface) LoadTexture(path string) (render.Texture, error) {
	img, err := imageload.Load(path)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return s.NewTexture(filepath.Base(path), img)
}

// DeleteTexture draws any pending batch, then releases t.
func (s *Surface) DeleteTexture(t render.Texture) {
	if t == nil {
		return
	}
	s.Flush()
	s.dev.DeleteTexture(t)
}

// CreateCustomShader splices vertexBody and fragmentBody into the built-in
// program of kind and declares decls as custom uniforms. The program is
// released by Destroy or DeleteShader.
func (s *Surface) CreateCustomShader(vertexBody, fragmentBody string, kind shader.Kind, decls []shader.Decl) (*shader.Program, error) {
	p, err := shader.NewProgram(s.dev, shader.Spec{
		Kind:     kind,
		Vertex:   vertexBody,
		Fragment: fragmentBody,
		Decls:    decls,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	s.programs = append(s.programs, p)
	return p, nil
}

// DeleteShader releases a program created by CreateCustomShader. The
// active region is flushed and left first when it uses p.
func (s *Surface) DeleteShader(p *shader.Program) {
	i := slices.Index(s.programs, p)
	if i < 0 {
		batch2d.Logger().Debug("surface: DeleteShader of foreign program ignored")
		return
	}
	if s.activeProg == p {
		s.quitRegion()
	}
	s.programs = slices.Delete(s.programs, i, i+1)
	p.Destroy()
}
