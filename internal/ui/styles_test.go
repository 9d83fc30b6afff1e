package ui

import "testing"

func TestRenderPlain(t *testing.T) {
	SetColor(false)

	tests := []struct {
		name   string
		render func(string) string
	}{
		{"accent", RenderAccent},
		{"pass", RenderPass},
		{"fail", RenderFail},
		{"warn", RenderWarn},
		{"muted", RenderMuted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.render("plane"); got != "plane" {
				t.Errorf("render without color = %q, want %q", got, "plane")
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	SetColor(false)

	if got := StatusIcon(true); got != IconPass {
		t.Errorf("StatusIcon(true) = %q", got)
	}
	if got := StatusIcon(false); got != IconFail {
		t.Errorf("StatusIcon(false) = %q", got)
	}
}

func TestShouldUseColor_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR should disable color")
	}
}
