package renderer

// flockShaderSource draws one instance per entity. The vertex stage adds the strip displacement
// of the instance's animation row to the rest position before applying the model matrix; a
// negative row draws the rest pose.
const flockShaderSource = `
struct Camera {
    viewProj: mat4x4<f32>,
};

struct Instance {
    model: mat4x4<f32>,
    params: vec4<f32>,
};

@group(0) @binding(0) var<uniform> camera: Camera;
@group(0) @binding(1) var<storage, read> instances: array<Instance>;
@group(0) @binding(2) var strip: texture_2d<f32>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(in: VertexInput, @builtin(vertex_index) vi: u32, @builtin(instance_index) ii: u32) -> VertexOutput {
    let inst = instances[ii];
    var local = in.position;
    let row = i32(inst.params.x);
    if (row >= 0) {
        let dims = textureDimensions(strip);
        let texel = vec2<i32>(i32(vi) % i32(dims.x), row % i32(dims.y));
        local = local + textureLoad(strip, texel, 0).xyz;
    }
    var out: VertexOutput;
    out.clip = camera.viewProj * inst.model * vec4<f32>(local, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`
