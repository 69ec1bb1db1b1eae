// Package sysfs locates kernel-generated directories and holds open attribute
// files under /sys.
//
// Kernel drivers often suffix their directories with an instance id that
// cannot be predicted (bone_capemgr.9, ocp.3, pwm_test_P9_14.15), so callers
// resolve them by substring with FindEntry rather than by exact name.
package sysfs
