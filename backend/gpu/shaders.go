package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
)

// blitShaderWGSL and blurShaderWGSL are the compute shader sources the GPU
// backend wants to run the BLIT and BLUR command kinds with. They mirror
// the uniform layout of gpucore.RectUniforms and gpucore.BlurUniforms
// respectively; a change to either struct's field order must be mirrored
// here.
const blitShaderWGSL = `
struct RectUniforms {
    x: i32,
    y: i32,
    width: u32,
    height: u32,
};

@group(0) @binding(0) var<uniform> rect: RectUniforms;
@group(0) @binding(1) var src_tex: texture_2d<f32>;
@group(0) @binding(2) var dst_tex: texture_storage_2d<rgba8unorm, write>;

@compute @workgroup_size(8, 8, 1)
fn blit_main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= rect.width || gid.y >= rect.height) {
        return;
    }
    let coord = vec2<i32>(rect.x + i32(gid.x), rect.y + i32(gid.y));
    let color = textureLoad(src_tex, vec2<i32>(i32(gid.x), i32(gid.y)), 0);
    textureStore(dst_tex, coord, color);
}
`

const blurShaderWGSL = `
struct BlurUniforms {
    kernel_width: u32,
    kernel_height: u32,
    image_width: u32,
    image_height: u32,
    origin_x: i32,
    origin_y: i32,
    opacity: f32,
    padding1: u32,
};

@group(0) @binding(0) var<uniform> params: BlurUniforms;
@group(0) @binding(1) var src_tex: texture_2d<f32>;
@group(0) @binding(2) var dst_tex: texture_storage_2d<rgba8unorm, write>;

@compute @workgroup_size(8, 8, 1)
fn blur_main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= params.image_width || gid.y >= params.image_height) {
        return;
    }
    var sum = vec4<f32>(0.0, 0.0, 0.0, 0.0);
    var count = 0.0;
    let half_w = i32(params.kernel_width / 2u);
    let half_h = i32(params.kernel_height / 2u);
    for (var dy = -half_h; dy <= half_h; dy = dy + 1) {
        for (var dx = -half_w; dx <= half_w; dx = dx + 1) {
            let sx = i32(gid.x) + dx;
            let sy = i32(gid.y) + dy;
            if (sx >= 0 && sy >= 0 && sx < i32(params.image_width) && sy < i32(params.image_height)) {
                sum = sum + textureLoad(src_tex, vec2<i32>(sx, sy), 0);
                count = count + 1.0;
            }
        }
    }
    let avg = sum / max(count, 1.0);
    textureStore(dst_tex, vec2<i32>(params.origin_x + i32(gid.x), params.origin_y + i32(gid.y)), avg * params.opacity);
}
`

// compiledShader holds a WGSL source's naga-validated SPIR-V, packed into
// 32-bit words the way naga's byte output is assembled elsewhere in this
// toolchain (see the fine rasterizer's shader loader for the same pattern).
type compiledShader struct {
	source string
	spirv  []uint32
}

func compileWGSL(label, source string) (*compiledShader, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderRejected, label, err)
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return &compiledShader{source: source, spirv: words}, nil
}
