package prompt

import (
	"strings"
	"testing"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

func TestCompose_WithoutContext(t *testing.T) {
	req, _ := model.NewGenerationRequest("minimalist cat mugs", 3)
	got := Compose(req)

	if !strings.Contains(got, `"minimalist cat mugs"`) {
		t.Errorf("Compose() missing topic:\n%s", got)
	}
	if !strings.Contains(got, "Generate exactly 3 ") || !strings.Contains(got, "Return exactly 3 objects") {
		t.Errorf("Compose() missing exact count:\n%s", got)
	}
	if strings.Contains(strings.ToLower(got), "market research") {
		t.Errorf("Compose() mentions research without context:\n%s", got)
	}
	for _, field := range append(model.MandatoryFields, "trend_score", "target_audience") {
		if !strings.Contains(got, "- "+field+":") {
			t.Errorf("Compose() missing field %s", field)
		}
	}
}

func TestCompose_WithContext(t *testing.T) {
	req, _ := model.NewGenerationRequest("cat mugs", 5)
	got := Compose(req.WithContext("Sage green is everywhere."))

	if !strings.Contains(got, ResearchHeader+"\nSage green is everywhere.") {
		t.Errorf("Compose() missing research section:\n%s", got)
	}
	if strings.Index(got, ResearchHeader) > strings.Index(got, "Generate exactly") {
		t.Errorf("research section should precede the generation instructions")
	}
}

func TestCompose_BlankContextIgnored(t *testing.T) {
	req, _ := model.NewGenerationRequest("cat mugs", 5)
	if got := Compose(req.WithContext("  \n ")); strings.Contains(got, ResearchHeader) {
		t.Errorf("Compose() included blank research section")
	}
}

func TestCompose_Pure(t *testing.T) {
	req, _ := model.NewGenerationRequest("cat mugs", 2)
	if Compose(req) != Compose(req) {
		t.Errorf("Compose() is not deterministic")
	}
}
