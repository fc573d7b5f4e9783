package step

// mergeVert/mergeFrag are the full-screen-triangle copy shader used to
// blit a pass's scratch render target into its atlas tile (see
// merge.Atlas). They read the destination tile's pixel origin from
// gpgpu_mergeTile and remap the unit triangle into that sub-rectangle
// of the atlas framebuffer; the fragment stage is a straight texture
// copy.
const mergeVert = `
attribute vec2 position;
uniform ivec2 gpgpu_mergeTile;
uniform vec2 gpgpu_mergeAtlasShape;
varying vec2 gpgpu_uv;
void main() {
	gpgpu_uv = position * 0.5 + 0.5;
	vec2 tileSize = vec2(1.0) / (gpgpu_mergeAtlasShape);
	vec2 origin = vec2(gpgpu_mergeTile) / gpgpu_mergeAtlasShape;
	vec2 clip = origin * 2.0 - 1.0 + (position * 0.5 + 0.5) * tileSize * 2.0;
	gl_Position = vec4(clip, 0.0, 1.0);
}
`

const mergeFrag = `
precision mediump float;
uniform sampler2D gpgpu_mergeSrc;
varying vec2 gpgpu_uv;
void main() {
	gl_FragColor = texture2D(gpgpu_mergeSrc, gpgpu_uv);
}
`
