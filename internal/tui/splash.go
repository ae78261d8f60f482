package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// splashModel covers startup while the preflight warms remote assets.
type splashModel struct {
	done   bool
	result app.PreflightResult
}

func newSplashModel() splashModel { return splashModel{} }

func (s splashModel) view(m *Model) string {
	art := m.theme.TopBarTitle.Render("✦ شرارة ✦")
	sub := m.theme.TopBarMeta.Render("مساعد خدمة مدارس الأحد")
	line := fmt.Sprintf("%s جاري التحضير...", m.spin.View())
	if s.done {
		line = "اكتمل التحضير"
	}
	box := lipgloss.JoinVertical(lipgloss.Center, art, "", sub, "", line)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.Pane.Render(box))
}
