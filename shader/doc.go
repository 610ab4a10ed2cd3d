// Package shader builds the WGSL programs the batchers draw with.
//
// Every program is generated from one template that declares the built-in
// vertex attributes (position, uv, texture id, color), the projection
// uniform and a table of texture bindings selected per vertex by texture
// id. Custom shaders splice a vertex body and a fragment body into that
// template and may declare extra uniforms:
//
//	prog, err := shader.NewProgram(dev, shader.Spec{
//	    Kind:     shader.Sprite,
//	    Fragment: "color = vec4<f32>(vec3<f32>(1.0) - color.rgb, color.a);",
//	    Decls:    []shader.Decl{{Name: "time", Kind: render.UniformFloat}},
//	})
//
// Inside the bodies the vertex input is vin, the vertex output vout, the
// fragment result color and custom uniforms are fields of u (u.time).
// Custom texture uniforms are plain texture bindings sampled with samp.
//
// Generated modules are parsed, lowered and validated with
// github.com/gogpu/naga before they reach the device, so a broken body is
// reported by NewProgram instead of at draw time.
package shader
