package device

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	t.Run("accepts valid names", func(t *testing.T) {
		for _, name := range []string{"Sensor-A", "a", strings.Repeat("x", 50), "  padded  "} {
			if err := ValidateName(name); err != nil {
				t.Errorf("ValidateName(%q) error = %v, want nil", name, err)
			}
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		for _, name := range []string{"", "   ", "\t\n"} {
			if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) error = %v, want ErrInvalidName", name, err)
			}
		}
	})

	t.Run("rejects over-length name", func(t *testing.T) {
		name := strings.Repeat("x", 51)
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(51 chars) error = %v, want ErrInvalidName", err)
		}
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		// 50 CJK characters is 150 bytes but within the limit.
		if err := ValidateName(strings.Repeat("温", 50)); err != nil {
			t.Errorf("ValidateName(50 multibyte chars) error = %v, want nil", err)
		}
		if err := ValidateName(strings.Repeat("温", 51)); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(51 multibyte chars) error = %v, want ErrInvalidName", err)
		}
	})
}

func TestValidateType(t *testing.T) {
	t.Run("accepts valid types", func(t *testing.T) {
		for _, typ := range []string{"sensor", "gateway", strings.Repeat("y", 20)} {
			if err := ValidateType(typ); err != nil {
				t.Errorf("ValidateType(%q) error = %v, want nil", typ, err)
			}
		}
	})

	t.Run("rejects empty type", func(t *testing.T) {
		if err := ValidateType("  "); !errors.Is(err, ErrInvalidType) {
			t.Errorf("ValidateType(blank) error = %v, want ErrInvalidType", err)
		}
	})

	t.Run("rejects over-length type", func(t *testing.T) {
		if err := ValidateType(strings.Repeat("y", 21)); !errors.Is(err, ErrInvalidType) {
			t.Errorf("ValidateType(21 chars) error = %v, want ErrInvalidType", err)
		}
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		if err := ValidateType(strings.Repeat("传", 20)); err != nil {
			t.Errorf("ValidateType(20 multibyte chars) error = %v, want nil", err)
		}
		if err := ValidateType(strings.Repeat("传", 21)); !errors.Is(err, ErrInvalidType) {
			t.Errorf("ValidateType(21 multibyte chars) error = %v, want ErrInvalidType", err)
		}
	})
}

func TestValidateLocation(t *testing.T) {
	if err := ValidateLocation(""); err != nil {
		t.Errorf("ValidateLocation(empty) error = %v, want nil (optional field)", err)
	}
	if err := ValidateLocation(strings.Repeat("z", 100)); err != nil {
		t.Errorf("ValidateLocation(100 chars) error = %v, want nil", err)
	}
	if err := ValidateLocation(strings.Repeat("z", 101)); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("ValidateLocation(101 chars) error = %v, want ErrInvalidLocation", err)
	}
	if err := ValidateLocation(strings.Repeat("库", 100)); err != nil {
		t.Errorf("ValidateLocation(100 multibyte chars) error = %v, want nil", err)
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		if err := ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%q) error = %v, want nil", s, err)
		}
	}
	for _, s := range []Status{"", "ACTIVE", "online", "retired"} {
		if err := ValidateStatus(s); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ValidateStatus(%q) error = %v, want ErrInvalidStatus", s, err)
		}
	}
}
