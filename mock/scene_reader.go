package mock_generator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
)

//go:embed scene.json
var defaultScene []byte

type SceneReader interface {
	Read() (*MockScript, error)
}

type fileSceneReader struct {
	logger   outbound.LoggerPort
	fileName string
}

// NewFileSceneReader reads fileName on every call, or the bundled scene when fileName is empty.
func NewFileSceneReader(fileName string, logger outbound.LoggerPort) SceneReader {
	return &fileSceneReader{
		logger:   logger,
		fileName: fileName,
	}
}

func (f *fileSceneReader) Read() (*MockScript, error) {
	if f.fileName == "" {
		return f.decode(bytes.NewReader(defaultScene))
	}

	file, err := os.Open(f.fileName)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			f.logger.Error(err, "failed to close file")
		}
	}(file)

	return f.decode(file)
}

func (f *fileSceneReader) decode(r io.Reader) (*MockScript, error) {
	var script MockScript
	if err := json.NewDecoder(r).Decode(&script); err != nil {
		f.logger.Error(err, "failed to decode json")
		return nil, err
	}
	return &script, nil
}
