package config

import (
	"fmt"
	"os"

	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/core/utils"
)

// programsFile is the Hjson shape of a loan program file.
type programsFile struct {
	Programs []loan.Constraints `json:"programs"`
}

// LoadPrograms reads a loan program file. The format is Hjson so the files
// can carry comments explaining where each constraint came from.
func LoadPrograms(path string) ([]loan.Constraints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read programs %s: %w", path, err)
	}

	var file programsFile
	if err := utils.ParseHJSONToStruct(string(data), &file); err != nil {
		return nil, fmt.Errorf("parse programs %s: %w", path, err)
	}
	if len(file.Programs) == 0 {
		return nil, fmt.Errorf("programs file %s defines no programs", path)
	}

	for _, p := range file.Programs {
		if p.Program == "" {
			return nil, fmt.Errorf("programs file %s has a program without a name", path)
		}
		if p.MaxLTV <= 0 || p.MaxLTV > 1 {
			return nil, fmt.Errorf("program %s: max_ltv %f out of range", p.Program, p.MaxLTV)
		}
	}
	return file.Programs, nil
}

// ProgramsOrDefault loads programs from path, falling back to the built-in
// set when the file does not exist.
func ProgramsOrDefault(path string) ([]loan.Constraints, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return loan.DefaultPrograms(), nil
	}
	return LoadPrograms(path)
}
