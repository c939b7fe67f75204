package config

import (
	"fmt"
	"os"
	"strings"
)

// Template returns the starter file for kind: "swift" (all sections) or
// "server".
func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "swift", "":
		return swiftTemplate, nil
	case "server":
		return serverTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const swiftTemplate = `[fin]
line_ending = "LF"
encoding = "US-ASCII"
validate_charset = true
batch_header = false
batch_trailer = false
batch_comments = false
strict_fields = false

[rje]
line_ending = "CRLF"
encoding = "US-ASCII"
delimiter = "$"
validate_charset = true

[dospcc]
line_ending = "CRLF"
encoding = "US-ASCII"
sector_size = 512
start_marker = 1
end_marker = 3
pad_byte = 0
hex_dump = false

[network]
bic = "CENAIDJ0AXXX"
suffix = "1107"

[validator]
input_dir = "input"
output_dir = "output"
# delimiter and sector_size default to the [rje] and [dospcc] values.
look_ahead_sectors = 10
split_threshold = 1000
extensions = [".txt", ".fin", ".rje", ".pcc"]
xlsx = ""

[server]
name = "swiftd"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 33554432
`

const serverTemplate = `[server]
name = "swiftd"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 33554432
`
