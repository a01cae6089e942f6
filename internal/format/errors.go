package format

import "fmt"

func errUnknownExtension(ext string) error {
	if ext == "" {
		return fmt.Errorf("no registered format accepts a file with no extension")
	}
	return fmt.Errorf("no registered format accepts extension %q", ext)
}

func errNoSignatureMatch() error {
	return fmt.Errorf("file extension matched candidate formats but no content signature matched")
}
