//go:build opencl && (linux || windows || darwin)
// +build opencl
// +build linux windows darwin

// Package opencl provides cross-platform accelerator execution using OpenCL.
package opencl

/*
#cgo linux CFLAGS: -I/opt/rocm/include -I/usr/include
#cgo linux LDFLAGS: -L/opt/rocm/lib -L/usr/lib/x86_64-linux-gnu -lOpenCL
#cgo darwin CFLAGS: -framework OpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#cgo windows LDFLAGS: -lOpenCL

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif

#include <stdlib.h>
#include <string.h>
#include <stdio.h>

// Error handling
static char vecrun_cl_last_error[512] = {0};

static void vecrun_cl_set_error(const char* msg) {
    strncpy(vecrun_cl_last_error, msg, sizeof(vecrun_cl_last_error) - 1);
}

const char* vecrun_cl_get_last_error() {
    return vecrun_cl_last_error;
}

void vecrun_cl_clear_error() {
    vecrun_cl_last_error[0] = 0;
}

static const char* vecrun_cl_error_string(cl_int error) {
    switch (error) {
        case CL_SUCCESS: return "CL_SUCCESS";
        case CL_DEVICE_NOT_FOUND: return "CL_DEVICE_NOT_FOUND";
        case CL_DEVICE_NOT_AVAILABLE: return "CL_DEVICE_NOT_AVAILABLE";
        case CL_COMPILER_NOT_AVAILABLE: return "CL_COMPILER_NOT_AVAILABLE";
        case CL_MEM_OBJECT_ALLOCATION_FAILURE: return "CL_MEM_OBJECT_ALLOCATION_FAILURE";
        case CL_OUT_OF_RESOURCES: return "CL_OUT_OF_RESOURCES";
        case CL_OUT_OF_HOST_MEMORY: return "CL_OUT_OF_HOST_MEMORY";
        case CL_BUILD_PROGRAM_FAILURE: return "CL_BUILD_PROGRAM_FAILURE";
        case CL_INVALID_VALUE: return "CL_INVALID_VALUE";
        case CL_INVALID_PLATFORM: return "CL_INVALID_PLATFORM";
        case CL_INVALID_DEVICE: return "CL_INVALID_DEVICE";
        case CL_INVALID_CONTEXT: return "CL_INVALID_CONTEXT";
        case CL_INVALID_COMMAND_QUEUE: return "CL_INVALID_COMMAND_QUEUE";
        case CL_INVALID_HOST_PTR: return "CL_INVALID_HOST_PTR";
        case CL_INVALID_MEM_OBJECT: return "CL_INVALID_MEM_OBJECT";
        case CL_INVALID_BUILD_OPTIONS: return "CL_INVALID_BUILD_OPTIONS";
        case CL_INVALID_PROGRAM: return "CL_INVALID_PROGRAM";
        case CL_INVALID_PROGRAM_EXECUTABLE: return "CL_INVALID_PROGRAM_EXECUTABLE";
        case CL_INVALID_KERNEL_NAME: return "CL_INVALID_KERNEL_NAME";
        case CL_INVALID_KERNEL: return "CL_INVALID_KERNEL";
        case CL_INVALID_ARG_INDEX: return "CL_INVALID_ARG_INDEX";
        case CL_INVALID_ARG_VALUE: return "CL_INVALID_ARG_VALUE";
        case CL_INVALID_ARG_SIZE: return "CL_INVALID_ARG_SIZE";
        case CL_INVALID_KERNEL_ARGS: return "CL_INVALID_KERNEL_ARGS";
        case CL_INVALID_WORK_DIMENSION: return "CL_INVALID_WORK_DIMENSION";
        case CL_INVALID_WORK_GROUP_SIZE: return "CL_INVALID_WORK_GROUP_SIZE";
        case CL_INVALID_WORK_ITEM_SIZE: return "CL_INVALID_WORK_ITEM_SIZE";
        case CL_INVALID_GLOBAL_OFFSET: return "CL_INVALID_GLOBAL_OFFSET";
        default: return "Unknown OpenCL error";
    }
}

// Device structure: one device with its context and in-order command queue.
typedef struct {
    cl_platform_id platform;
    cl_device_id device;
    cl_context context;
    cl_command_queue queue;
    int device_id;
} VecrunCLDevice;

int vecrun_cl_platform_count() {
    cl_uint num_platforms;
    cl_int err = clGetPlatformIDs(0, NULL, &num_platforms);
    if (err != CL_SUCCESS) {
        return 0;
    }
    return (int)num_platforms;
}

// Count devices of any type across all platforms.
int vecrun_cl_device_count() {
    cl_uint num_platforms;
    cl_int err = clGetPlatformIDs(0, NULL, &num_platforms);
    if (err != CL_SUCCESS || num_platforms == 0) {
        return 0;
    }

    cl_platform_id* platforms = (cl_platform_id*)malloc(num_platforms * sizeof(cl_platform_id));
    clGetPlatformIDs(num_platforms, platforms, NULL);

    int total_devices = 0;
    for (cl_uint i = 0; i < num_platforms; i++) {
        cl_uint num_devices;
        err = clGetDeviceIDs(platforms[i], CL_DEVICE_TYPE_ALL, 0, NULL, &num_devices);
        if (err == CL_SUCCESS) {
            total_devices += num_devices;
        }
    }

    free(platforms);
    return total_devices;
}

int vecrun_cl_is_available() {
    return vecrun_cl_device_count() > 0 ? 1 : 0;
}

// Get the Nth device across all platforms.
static int vecrun_cl_device_by_index(int index, cl_platform_id* out_platform, cl_device_id* out_device) {
    cl_uint num_platforms;
    cl_int err = clGetPlatformIDs(0, NULL, &num_platforms);
    if (err != CL_SUCCESS || num_platforms == 0) {
        return -1;
    }

    cl_platform_id* platforms = (cl_platform_id*)malloc(num_platforms * sizeof(cl_platform_id));
    clGetPlatformIDs(num_platforms, platforms, NULL);

    int current_index = 0;
    for (cl_uint i = 0; i < num_platforms; i++) {
        cl_uint num_devices;
        err = clGetDeviceIDs(platforms[i], CL_DEVICE_TYPE_ALL, 0, NULL, &num_devices);
        if (err != CL_SUCCESS) continue;

        if (index < current_index + (int)num_devices) {
            cl_device_id* devices = (cl_device_id*)malloc(num_devices * sizeof(cl_device_id));
            clGetDeviceIDs(platforms[i], CL_DEVICE_TYPE_ALL, num_devices, devices, NULL);
            *out_platform = platforms[i];
            *out_device = devices[index - current_index];
            free(devices);
            free(platforms);
            return 0;
        }
        current_index += num_devices;
    }

    free(platforms);
    return -1;
}

VecrunCLDevice* vecrun_cl_create_device(int device_id) {
    VecrunCLDevice* dev = (VecrunCLDevice*)malloc(sizeof(VecrunCLDevice));
    if (!dev) {
        vecrun_cl_set_error("Failed to allocate device struct");
        return NULL;
    }
    memset(dev, 0, sizeof(VecrunCLDevice));
    dev->device_id = device_id;

    if (vecrun_cl_device_by_index(device_id, &dev->platform, &dev->device) != 0) {
        vecrun_cl_set_error("Device not found");
        free(dev);
        return NULL;
    }

    cl_int err;

    dev->context = clCreateContext(NULL, 1, &dev->device, NULL, NULL, &err);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to create context: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        free(dev);
        return NULL;
    }

    dev->queue = clCreateCommandQueue(dev->context, dev->device, 0, &err);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to create command queue: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        clReleaseContext(dev->context);
        free(dev);
        return NULL;
    }

    return dev;
}

void vecrun_cl_release_device(VecrunCLDevice* dev) {
    if (dev) {
        if (dev->queue) clReleaseCommandQueue(dev->queue);
        if (dev->context) clReleaseContext(dev->context);
        free(dev);
    }
}

const char* vecrun_cl_device_name(VecrunCLDevice* dev) {
    static char name[256];
    cl_int err = clGetDeviceInfo(dev->device, CL_DEVICE_NAME, sizeof(name), name, NULL);
    if (err != CL_SUCCESS) {
        return "Unknown";
    }
    return name;
}

const char* vecrun_cl_device_vendor(VecrunCLDevice* dev) {
    static char vendor[256];
    cl_int err = clGetDeviceInfo(dev->device, CL_DEVICE_VENDOR, sizeof(vendor), vendor, NULL);
    if (err != CL_SUCCESS) {
        return "Unknown";
    }
    return vendor;
}

size_t vecrun_cl_device_memory(VecrunCLDevice* dev) {
    cl_ulong mem_size;
    cl_int err = clGetDeviceInfo(dev->device, CL_DEVICE_GLOBAL_MEM_SIZE, sizeof(mem_size), &mem_size, NULL);
    if (err != CL_SUCCESS) {
        return 0;
    }
    return (size_t)mem_size;
}

// Program compilation. On build failure the log is returned through
// out_log (malloc'd, caller frees) and the return value is nonzero.
typedef struct {
    cl_program program;
    VecrunCLDevice* device;
} VecrunCLProgram;

VecrunCLProgram* vecrun_cl_build_program(VecrunCLDevice* dev, const char* source, char** out_log) {
    *out_log = NULL;

    cl_int err;
    size_t source_len = strlen(source);
    cl_program prog = clCreateProgramWithSource(dev->context, 1, &source, &source_len, &err);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to create program: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return NULL;
    }

    err = clBuildProgram(prog, 1, &dev->device, NULL, NULL, NULL);
    if (err != CL_SUCCESS) {
        size_t log_size = 0;
        clGetProgramBuildInfo(prog, dev->device, CL_PROGRAM_BUILD_LOG, 0, NULL, &log_size);
        char* log = (char*)malloc(log_size + 1);
        if (log) {
            clGetProgramBuildInfo(prog, dev->device, CL_PROGRAM_BUILD_LOG, log_size, log, NULL);
            log[log_size] = '\0';
        }
        *out_log = log;
        vecrun_cl_set_error(vecrun_cl_error_string(err));
        clReleaseProgram(prog);
        return NULL;
    }

    VecrunCLProgram* p = (VecrunCLProgram*)malloc(sizeof(VecrunCLProgram));
    if (!p) {
        vecrun_cl_set_error("Failed to allocate program struct");
        clReleaseProgram(prog);
        return NULL;
    }
    p->program = prog;
    p->device = dev;
    return p;
}

void vecrun_cl_release_program(VecrunCLProgram* p) {
    if (p) {
        if (p->program) clReleaseProgram(p->program);
        free(p);
    }
}

cl_kernel vecrun_cl_create_kernel(VecrunCLProgram* p, const char* name) {
    cl_int err;
    cl_kernel k = clCreateKernel(p->program, name, &err);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to create kernel %s: %s", name, vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return NULL;
    }
    return k;
}

void vecrun_cl_release_kernel(cl_kernel k) {
    if (k) clReleaseKernel(k);
}

// Buffer management (double precision).
typedef struct {
    cl_mem mem;
    size_t count;
    VecrunCLDevice* device;
} VecrunCLBuffer;

VecrunCLBuffer* vecrun_cl_create_buffer(VecrunCLDevice* dev, double* host_data, size_t count) {
    VecrunCLBuffer* buf = (VecrunCLBuffer*)malloc(sizeof(VecrunCLBuffer));
    if (!buf) {
        vecrun_cl_set_error("Failed to allocate buffer struct");
        return NULL;
    }

    buf->count = count;
    buf->device = dev;

    cl_int err;
    cl_mem_flags flags = CL_MEM_READ_WRITE;
    if (host_data) {
        flags |= CL_MEM_COPY_HOST_PTR;
    }

    buf->mem = clCreateBuffer(dev->context, flags, count * sizeof(double), host_data, &err);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to create buffer: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        free(buf);
        return NULL;
    }

    return buf;
}

void vecrun_cl_release_buffer(VecrunCLBuffer* buf) {
    if (buf) {
        if (buf->mem) clReleaseMemObject(buf->mem);
        free(buf);
    }
}

int vecrun_cl_set_arg_mem(cl_kernel k, int index, VecrunCLBuffer* buf) {
    cl_int err = clSetKernelArg(k, index, sizeof(cl_mem), &buf->mem);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to set buffer arg %d: %s", index, vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return -1;
    }
    return 0;
}

int vecrun_cl_set_arg_u32(cl_kernel k, int index, unsigned int value) {
    cl_int err = clSetKernelArg(k, index, sizeof(unsigned int), &value);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to set scalar arg %d: %s", index, vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return -1;
    }
    return 0;
}

int vecrun_cl_enqueue(VecrunCLDevice* dev, cl_kernel k, size_t global_size, size_t local_size) {
    cl_int err = clEnqueueNDRangeKernel(dev->queue, k, 1, NULL, &global_size, &local_size, 0, NULL, NULL);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to enqueue kernel: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return -1;
    }
    return 0;
}

int vecrun_cl_finish(VecrunCLDevice* dev) {
    cl_int err = clFinish(dev->queue);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "clFinish failed: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return -1;
    }
    return 0;
}

int vecrun_cl_read_buffer(VecrunCLBuffer* buf, double* host_data, size_t count) {
    if (!buf || !host_data) return -1;

    size_t copy = count;
    if (copy > buf->count) copy = buf->count;

    cl_int err = clEnqueueReadBuffer(buf->device->queue, buf->mem, CL_TRUE, 0,
                                     copy * sizeof(double), host_data, 0, NULL, NULL);
    if (err != CL_SUCCESS) {
        char msg[256];
        snprintf(msg, sizeof(msg), "Failed to read buffer: %s", vecrun_cl_error_string(err));
        vecrun_cl_set_error(msg);
        return -1;
    }
    return 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// Errors
var (
	ErrOpenCLNotAvailable = errors.New("opencl: OpenCL is not available on this system")
	ErrDeviceCreation     = errors.New("opencl: failed to create OpenCL device")
	ErrBufferCreation     = errors.New("opencl: failed to create buffer")
	ErrKernelExecution    = errors.New("opencl: kernel execution failed")
	ErrReadBack           = errors.New("opencl: buffer readback failed")
)

// Device represents an OpenCL device with its context and in-order command
// queue.
type Device struct {
	ptr    *C.VecrunCLDevice
	id     int
	name   string
	vendor string
	memory uint64
	mu     sync.Mutex
}

// Buffer represents an OpenCL memory buffer of float64 elements.
type Buffer struct {
	ptr    *C.VecrunCLBuffer
	count  int
	device *Device
}

// Program represents a compiled OpenCL program.
type Program struct {
	ptr    *C.VecrunCLProgram
	device *Device
}

// Kernel represents an OpenCL kernel object.
type Kernel struct {
	ptr  C.cl_kernel
	name string
}

// IsAvailable checks if any OpenCL device is present.
func IsAvailable() bool {
	return C.vecrun_cl_is_available() != 0
}

// PlatformCount returns the number of OpenCL platforms.
func PlatformCount() int {
	return int(C.vecrun_cl_platform_count())
}

// DeviceCount returns the number of OpenCL devices across all platforms.
func DeviceCount() int {
	count := C.vecrun_cl_device_count()
	if count < 0 {
		return 0
	}
	return int(count)
}

// NewDevice creates a device handle for the Nth device across all
// platforms.
func NewDevice(deviceID int) (*Device, error) {
	if !IsAvailable() {
		return nil, ErrOpenCLNotAvailable
	}

	ptr := C.vecrun_cl_create_device(C.int(deviceID))
	if ptr == nil {
		errMsg := C.GoString(C.vecrun_cl_get_last_error())
		C.vecrun_cl_clear_error()
		return nil, fmt.Errorf("%w: %s", ErrDeviceCreation, errMsg)
	}

	return &Device{
		ptr:    ptr,
		id:     deviceID,
		name:   C.GoString(C.vecrun_cl_device_name(ptr)),
		vendor: C.GoString(C.vecrun_cl_device_vendor(ptr)),
		memory: uint64(C.vecrun_cl_device_memory(ptr)),
	}, nil
}

// Release frees the device, its queue, and context.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ptr != nil {
		C.vecrun_cl_release_device(d.ptr)
		d.ptr = nil
	}
}

// ID returns the device index.
func (d *Device) ID() int {
	return d.id
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// Vendor returns the device vendor name.
func (d *Device) Vendor() string {
	return d.vendor
}

// MemoryBytes returns the device global memory size in bytes.
func (d *Device) MemoryBytes() uint64 {
	return d.memory
}

// Compile builds the program source on this device. On build failure the
// returned error unwraps to *kernels.BuildError carrying the full build log
// and source text.
func (d *Device) Compile(src kernels.Source) (*Program, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cSource := C.CString(src.Text)
	defer C.free(unsafe.Pointer(cSource))

	var cLog *C.char
	ptr := C.vecrun_cl_build_program(d.ptr, cSource, &cLog)
	if ptr == nil {
		buildLog := ""
		if cLog != nil {
			buildLog = C.GoString(cLog)
			C.free(unsafe.Pointer(cLog))
		}
		errMsg := C.GoString(C.vecrun_cl_get_last_error())
		C.vecrun_cl_clear_error()
		if buildLog == "" {
			buildLog = errMsg
		}
		return nil, &kernels.BuildError{Device: d.name, Log: buildLog, Source: src.Text}
	}

	return &Program{ptr: ptr, device: d}, nil
}

// NewBuffer allocates a device buffer initialized from host data
// (CL_MEM_COPY_HOST_PTR).
func (d *Device) NewBuffer(data []float64) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrBufferCreation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ptr := C.vecrun_cl_create_buffer(
		d.ptr,
		(*C.double)(unsafe.Pointer(&data[0])),
		C.size_t(len(data)),
	)
	if ptr == nil {
		errMsg := C.GoString(C.vecrun_cl_get_last_error())
		C.vecrun_cl_clear_error()
		return nil, fmt.Errorf("%w: %s", ErrBufferCreation, errMsg)
	}

	return &Buffer{ptr: ptr, count: len(data), device: d}, nil
}

// Dispatch binds arguments in order and enqueues one kernel execution over
// the grid. Submission is asynchronous; Wait blocks on completion.
func (d *Device) Dispatch(k *Kernel, globalSize, localSize int, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, arg := range args {
		switch v := arg.(type) {
		case *Buffer:
			if C.vecrun_cl_set_arg_mem(k.ptr, C.int(i), v.ptr) != 0 {
				return d.lastError(ErrKernelExecution)
			}
		case uint32:
			if C.vecrun_cl_set_arg_u32(k.ptr, C.int(i), C.uint(v)) != 0 {
				return d.lastError(ErrKernelExecution)
			}
		default:
			return fmt.Errorf("%w: unsupported argument %d (%T)", ErrKernelExecution, i, arg)
		}
	}

	if C.vecrun_cl_enqueue(d.ptr, k.ptr, C.size_t(globalSize), C.size_t(localSize)) != 0 {
		return d.lastError(ErrKernelExecution)
	}
	return nil
}

// Wait blocks until all work submitted to the queue has completed.
func (d *Device) Wait() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if C.vecrun_cl_finish(d.ptr) != 0 {
		return d.lastError(ErrKernelExecution)
	}
	return nil
}

// ReadBack copies buffer contents into dst with a blocking read.
func (d *Device) ReadBack(b *Buffer, dst []float64) error {
	if len(dst) != b.count {
		return fmt.Errorf("%w: buffer has %d elements, dst has %d", ErrReadBack, b.count, len(dst))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ret := C.vecrun_cl_read_buffer(b.ptr, (*C.double)(unsafe.Pointer(&dst[0])), C.size_t(len(dst)))
	if ret != 0 {
		return d.lastError(ErrReadBack)
	}
	return nil
}

// lastError wraps the bridge's last error message. Callers must hold d.mu.
func (d *Device) lastError(sentinel error) error {
	errMsg := C.GoString(C.vecrun_cl_get_last_error())
	C.vecrun_cl_clear_error()
	return fmt.Errorf("%w: %s", sentinel, errMsg)
}

// Release frees the buffer resources.
func (b *Buffer) Release() {
	if b.ptr != nil {
		C.vecrun_cl_release_buffer(b.ptr)
		b.ptr = nil
	}
}

// Len returns the element count.
func (b *Buffer) Len() int {
	return b.count
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 {
	return uint64(b.count) * 8
}

// Kernel extracts a kernel from the program by name.
func (p *Program) Kernel(name string) (*Kernel, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	ptr := C.vecrun_cl_create_kernel(p.ptr, cName)
	if ptr == nil {
		errMsg := C.GoString(C.vecrun_cl_get_last_error())
		C.vecrun_cl_clear_error()
		return nil, fmt.Errorf("%w: %s", ErrKernelExecution, errMsg)
	}
	return &Kernel{ptr: ptr, name: name}, nil
}

// Release frees the program object.
func (p *Program) Release() {
	if p.ptr != nil {
		C.vecrun_cl_release_program(p.ptr)
		p.ptr = nil
	}
}

// Name returns the kernel function name.
func (k *Kernel) Name() string {
	return k.name
}

// Release frees the kernel object.
func (k *Kernel) Release() {
	if k.ptr != nil {
		C.vecrun_cl_release_kernel(k.ptr)
		k.ptr = nil
	}
}
