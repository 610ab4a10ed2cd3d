// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/config"
	"github.com/gogpu/batch2d/render"
)

// Option configures a Surface during creation.
//
// Example:
//
//	s, err := surface.New(dev, 800, 600,
//	    surface.WithBackground(batch2d.Hex("#203040")),
//	    surface.WithTextureUnits(8),
//	)
type Option func(*options)

type options struct {
	background   batch2d.Color
	maxSprites   int
	textureUnits int
	pixelRatio   float64
	width        int
	height       int
}

func defaultOptions() options {
	return options{
		background: batch2d.Black,
		pixelRatio: 1,
	}
}

// WithBackground sets the color StartRender clears to.
func WithBackground(c batch2d.Color) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithMaxSprites caps the sprite count of one batch.
func WithMaxSprites(n int) Option {
	return func(o *options) {
		o.maxSprites = n
	}
}

// WithTextureUnits caps the texture units the surface uses below the
// device limit.
func WithTextureUnits(n int) Option {
	return func(o *options) {
		o.textureUnits = n
	}
}

// WithPixelRatio sets the ratio of viewport pixels to logical units.
func WithPixelRatio(r float64) Option {
	return func(o *options) {
		if r > 0 {
			o.pixelRatio = r
		}
	}
}

// WithConfig applies a configuration file section. Non-zero sizes in c
// override the size passed to New.
func WithConfig(c config.Surface) Option {
	return func(o *options) {
		o.background = c.BackgroundColor()
		o.maxSprites = c.MaxSprites
		o.textureUnits = c.TextureUnits
		if c.PixelRatio > 0 {
			o.pixelRatio = c.PixelRatio
		}
		if c.Width > 0 && c.Height > 0 {
			o.width, o.height = c.Width, c.Height
		}
	}
}

// limitedDevice reports fewer texture units than the device it wraps.
type limitedDevice struct {
	render.Device
	limits render.Limits
}

func (d limitedDevice) Limits() render.Limits { return d.limits }

func limitDevice(dev render.Device, units int) render.Device {
	l := dev.Limits()
	if units <= 0 || units >= l.MaxTextureUnits {
		return dev
	}
	l.MaxTextureUnits = units
	return limitedDevice{Device: dev, limits: l}
}
