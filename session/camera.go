package session

import (
	"fmt"
	"io/ioutil"
	"os"
)

// FileCamera is a Camera reading verification frames from a file on disk.
// It is used by headless deployments where an external capture process
// keeps the frame file current
type FileCamera struct {
	path string
}

// NewFileCamera creates a FileCamera reading frames from path
func NewFileCamera(path string) *FileCamera {
	return &FileCamera{path: path}
}

// Start checks that the frame file is present so that a broken capture
// setup is reported before the payment flow begins
func (c *FileCamera) Start() error {
	if c.path == "" {
		return fmt.Errorf("no camera frame path configured")
	}
	if _, err := os.Stat(c.path); err != nil {
		return fmt.Errorf("camera frame file is not available: %v", err)
	}
	return nil
}

// CaptureFrame reads the current frame
func (c *FileCamera) CaptureFrame() ([]byte, error) {
	return ioutil.ReadFile(c.path)
}
