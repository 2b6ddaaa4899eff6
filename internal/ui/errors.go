package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vtp/internal/config"
	"vtp/internal/domain"
)

// excerptLines is the number of source lines shown on each side of a problem
const excerptLines = 3

// ProblemsViewer displays diagnostics and failed cases in an interactive TUI
type ProblemsViewer struct {
	config *config.Config
}

// NewProblemsViewer creates a new ProblemsViewer
func NewProblemsViewer(cfg *config.Config) *ProblemsViewer {
	return &ProblemsViewer{config: cfg}
}

// View displays the problems of record in an interactive TUI
func (pv *ProblemsViewer) View(record *domain.RunRecord) error {
	items := ProblemItems(record, pv.config.RelativeToWorkspace)
	if len(items) == 0 {
		color.Green("✓ No problems found!")
		return nil
	}

	app := tview.NewApplication()

	// Problems on the left
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, item := range items {
		list.AddItem(listItemText(i, item), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" Problems (%d diagnostics, %d failed) | ↑↓ navigate, → details, ← back, Ctrl+C exit ",
			len(record.Diagnostics), len(record.Failures())))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(items) {
			return
		}
		statsView.SetText(pv.formatStats(items[index]))
		detailsView.SetText(pv.formatDetails(items[index])).ScrollToBeginning()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(index int, item ProblemItem) string {
	tag := "red"
	if item.Severity == domain.SeverityWarning {
		tag = "yellow"
	}
	return fmt.Sprintf("[%s]%d.[white] %s", tag, index+1, tview.Escape(item.Title))
}

func (pv *ProblemsViewer) formatStats(item ProblemItem) string {
	if item.File == "" {
		return "[cyan]location:[white] [gray]unknown[white]\n"
	}
	loc := pv.config.RelativeToWorkspace(item.File)
	if item.Line >= 0 {
		loc = fmt.Sprintf("%s:%d:%d", loc, item.Line+1, item.Column+1)
	}
	return fmt.Sprintf("[cyan]location:[white] [yellow]%s[white]\n", tview.Escape(loc))
}

// formatDetails formats a problem using tview color tags
func (pv *ProblemsViewer) formatDetails(item ProblemItem) string {
	var b strings.Builder

	if item.Case != nil {
		fmt.Fprintf(&b, "[red]%s Test: %s[white]\n", StatusGlyph(item.Case.Status), tview.Escape(item.Case.Name))
		fmt.Fprintf(&b, "[cyan]Script: %s[white]\n\n", tview.Escape(pv.config.RelativeToWorkspace(item.Case.Script)))
	} else {
		fmt.Fprintf(&b, "[red]%s[white]\n\n", strings.ToUpper(string(item.Severity)))
	}

	if item.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(item.Message))
	}

	lines, err := SourceExcerpt(item.File, item.Line, excerptLines)
	if err != nil {
		fmt.Fprintf(&b, "[gray]%s[white]\n", tview.Escape(err.Error()))
		return b.String()
	}
	if len(lines) > 0 {
		b.WriteString("[yellow]Source:[white]\n")
		for _, line := range lines {
			if strings.HasPrefix(line, ">") {
				fmt.Fprintf(&b, "[red]%s[white]\n", tview.Escape(line))
			} else {
				fmt.Fprintf(&b, "%s\n", tview.Escape(line))
			}
		}
	}
	return b.String()
}
