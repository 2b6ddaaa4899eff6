package explorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vtp/internal/config"
	"vtp/internal/diagnostics"
	"vtp/internal/discovery"
	"vtp/internal/domain"
	"vtp/internal/execution"
	"vtp/internal/logger"
	"vtp/internal/parser"
	"vtp/internal/tree"
)

// ErrMultipleGUIDisabled is returned when a GUI run would cover more than a
// single test case and multiple GUI test cases are not allowed.
var ErrMultipleGUIDisabled = errors.New("Executing multiple testcases in GUI-Mode: disabled!")

// Runner executes VUnit scripts
type Runner interface {
	execution.Executor
	Version(ctx context.Context, script string) (string, error)
}

// ParserFactory creates the output parser for one run
type ParserFactory func() parser.Parser

// Loader builds a test tree from scripts
type Loader interface {
	Build(ctx context.Context, scripts []string) *tree.Tree
}

// RunRequest selects what to run. An empty Include runs every script.
type RunRequest struct {
	Include []string
	Exclude []string
	GUI     bool
}

// Session loads the test tree and runs selections of it
type Session struct {
	config   *config.Config
	scanner  *discovery.Scanner
	runner   Runner
	loader   Loader
	parsers  ParserFactory
	diags    *diagnostics.Aggregator
	reporter Reporter
	log      logger.Logger

	mu             sync.Mutex
	tree           *tree.Tree
	version        string
	versionChecked bool

	runMu sync.Mutex
}

// NewSession creates a new Session. A nil parsers factory creates a
// parser.Interpreter per run.
func NewSession(
	cfg *config.Config,
	scanner *discovery.Scanner,
	runner Runner,
	loader Loader,
	parsers ParserFactory,
	diags *diagnostics.Aggregator,
	reporter Reporter,
	log logger.Logger,
) *Session {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if parsers == nil {
		parsers = func() parser.Parser { return parser.NewInterpreter(cfg) }
	}
	return &Session{
		config:   cfg,
		scanner:  scanner,
		runner:   runner,
		loader:   loader,
		parsers:  parsers,
		diags:    diags,
		reporter: &syncReporter{r: reporter},
		log:      log,
	}
}

// Tree returns the current tree, nil before the first load
func (s *Session) Tree() *tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Version returns the VUnit version versionChecked on the first load
func (s *Session) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Diagnostics returns the aggregator holding the diagnostics of the last run
func (s *Session) Diagnostics() *diagnostics.Aggregator {
	return s.diags
}

// Scripts returns the run scripts of the workspace: the configured script
// or every script found by discovery.
func (s *Session) Scripts() ([]string, error) {
	if s.config.WorkspaceRoot == "" {
		return nil, domain.NewConfigError("no workspace folder is open")
	}
	if script := s.config.GetScriptPath(); script != "" {
		if _, err := os.Stat(script); err != nil {
			return nil, domain.NewConfigError("VUnit run script %s does not exist", script)
		}
		return []string{script}, nil
	}
	scripts, err := s.scanner.Scan(s.config.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to discover run scripts: %w", err)
	}
	return scripts, nil
}

// LoadTests discovers the scripts, builds a fresh tree and replaces the
// current one. Node ids are stable across loads.
func (s *Session) LoadTests(ctx context.Context) (*tree.Tree, error) {
	scripts, err := s.Scripts()
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		s.log.Warnf("no VUnit run scripts found in %s", s.config.WorkspaceRoot)
	}

	s.detectVersion(ctx, scripts)

	t := s.loader.Build(ctx, scripts)

	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()

	s.reporter.Loaded(t)
	return t, nil
}

func (s *Session) detectVersion(ctx context.Context, scripts []string) {
	s.mu.Lock()
	done := s.versionChecked
	s.versionChecked = true
	s.mu.Unlock()
	if done || len(scripts) == 0 {
		return
	}

	v, err := s.runner.Version(ctx, scripts[0])
	if err != nil {
		s.log.Warnf("failed to determine VUnit version: %v", err)
		return
	}
	s.log.Infof("VUnit version %s", v)
	s.mu.Lock()
	s.version = v
	s.mu.Unlock()
}

// runScope tracks the leaves of one run
type runScope struct {
	tree     *tree.Tree
	excluded []string
	leaves   []string
	seen     map[string]bool
}

func (rs *runScope) isExcluded(id string) bool {
	for _, ex := range rs.excluded {
		if rs.tree.Contains(ex, id) {
			return true
		}
	}
	return false
}

func (rs *runScope) add(id string) bool {
	if rs.seen[id] || rs.isExcluded(id) {
		return false
	}
	rs.seen[id] = true
	rs.leaves = append(rs.leaves, id)
	return true
}

// RunTests executes the request and returns the record of the run. Scripts
// run one after another. Cancelling ctx kills the running process and marks
// the leaves still running as skipped.
func (s *Session) RunTests(ctx context.Context, req RunRequest) (*domain.RunRecord, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	t := s.Tree()
	if t == nil {
		var err error
		if t, err = s.LoadTests(ctx); err != nil {
			return nil, err
		}
	}

	nodes, err := s.resolve(t, req.Include)
	if err != nil {
		return nil, err
	}

	s.diags.Clear()
	if req.GUI {
		return s.runGUI(ctx, t, nodes, req.Exclude, len(req.Include) == 0)
	}

	start := time.Now()
	record := &domain.RunRecord{}
	scope := &runScope{tree: t, excluded: req.Exclude, seen: make(map[string]bool)}

	if len(req.Include) > 0 {
		for _, n := range nodes {
			s.markLeaves(scope, n.ID, domain.StatusRunning, true)
		}
	} else {
		for _, n := range nodes {
			s.markLeaves(scope, n.ID, domain.StatusQueued, false)
		}
	}

	scripts := make(map[string]bool)
	for i, n := range nodes {
		if ctx.Err() != nil {
			record.Meta.Cancelled = true
			for _, rest := range nodes[i:] {
				s.finishBusy(t, rest.ID, domain.StatusSkipped, "")
				s.resetQueued(t, rest.ID)
			}
			break
		}
		if len(req.Include) == 0 {
			s.markLeaves(scope, n.ID, domain.StatusRunning, true)
		}
		scripts[n.Script] = true
		if s.runNode(ctx, t, scope, n) {
			record.Meta.Cancelled = true
		}
	}

	record.Meta.Scripts = len(scripts)
	record.Results = s.results(t, scope)
	record.Diagnostics = s.diags.All()
	record.Finish(time.Since(start))
	return record, nil
}

// resolve returns the nodes to run: the included ids, or every script root.
func (s *Session) resolve(t *tree.Tree, include []string) ([]*tree.Node, error) {
	if len(include) == 0 {
		return t.Roots(), nil
	}
	var nodes []*tree.Node
	for _, id := range include {
		n, ok := t.Node(id)
		if !ok {
			s.log.Warnf("ignoring unknown test %s", id)
			continue
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no tests match %s", strings.Join(include, ", "))
	}
	return nodes, nil
}

// RunArgs returns the VUnit arguments for running node
func (s *Session) RunArgs(n *tree.Node, gui bool) []string {
	var args []string
	if n.Kind != tree.KindScript {
		pattern := n.Name
		if n.IsContainer() {
			pattern += ".*"
		}
		args = append(args, execution.Quote(pattern))
	}
	args = append(args, "--no-color", "--exit-0")
	opts := s.config.ShellOptions
	if gui {
		args = append(args, "-g")
		opts = s.config.GUIOptions
	}
	if opts = strings.TrimSpace(opts); opts != "" {
		args = append(args, opts)
	}
	return args
}

func (s *Session) runNode(ctx context.Context, t *tree.Tree, scope *runScope, n *tree.Node) (cancelled bool) {
	script := n.Script
	interp := s.parsers()

	_, err := s.runner.Execute(ctx, script, s.RunArgs(n, false), func(p *execution.Process) {
		p.OnLine(func(line string) {
			s.reporter.Output(line)
			for _, ev := range interp.Interpret(line) {
				s.apply(t, scope, n, ev)
			}
		})
		p.OnStderr(s.reporter.Output)
	})
	interp.Reset()

	msg := "Error in Execution of " + script
	switch {
	case isCancelled(err):
		s.log.Infof("run of %s cancelled", script)
		s.finishBusy(t, n.ID, domain.StatusSkipped, "")
		cancelled = true
	case err != nil:
		s.log.Errorf("%s: %v", msg, err)
		s.finishBusy(t, n.ID, domain.StatusErrored, msg)
	default:
		s.finishBusy(t, n.ID, domain.StatusSkipped, "")
	}

	changed := t.Rollup(n.ID)
	if err != nil && !cancelled {
		if st, ok := t.SetStatus(n.ID, domain.StatusErrored, msg); ok {
			changed = append(changed, st)
		}
		changed = append(changed, t.RollupAncestors(n.ID)...)
	}
	for _, st := range changed {
		s.reporter.NodeChanged(st)
	}
	return cancelled
}

func (s *Session) apply(t *tree.Tree, scope *runScope, n *tree.Node, ev parser.Event) {
	if ev.Kind == parser.EventDiagnostic {
		d := *ev.Diagnostic
		if !filepath.IsAbs(d.File) {
			d.File = filepath.Join(filepath.Dir(n.Script), d.File)
		}
		s.diags.Merge(d)
		return
	}

	id := tree.NameID(n.Script, string(ev.Name))
	if !t.Contains(n.ID, id) || !scope.seen[id] {
		s.log.Debugf("no test item %s in scope %s", id, n.ID)
		return
	}

	var st tree.NodeState
	var ok bool
	switch ev.Kind {
	case parser.EventStarted:
		st, ok = t.Update(id, func(node *tree.Node) {
			node.Status = domain.StatusRunning
			node.Busy = true
		})
	case parser.EventPassed:
		st, ok = t.Finish(id, domain.StatusPassed, "", ev.Duration)
	case parser.EventFailed:
		st, ok = t.Finish(id, domain.StatusFailed, ev.Message, ev.Duration)
	}
	if ok {
		s.reporter.NodeChanged(st)
	}
}

// markLeaves puts the leaves below id into the run scope with status
func (s *Session) markLeaves(scope *runScope, id string, status domain.TestStatus, busy bool) {
	for _, leaf := range scope.tree.Leaves(id) {
		if !scope.seen[leaf.ID] && !scope.add(leaf.ID) {
			continue
		}
		if st, ok := scope.tree.Update(leaf.ID, func(n *tree.Node) {
			n.Status = status
			n.Busy = busy
			n.Message = ""
			n.Duration = 0
		}); ok {
			s.reporter.NodeChanged(st)
		}
	}
	for _, st := range scope.tree.Rollup(id) {
		s.reporter.NodeChanged(st)
	}
}

// finishBusy gives every leaf below id that is still busy a final status,
// walking depth-first.
func (s *Session) finishBusy(t *tree.Tree, id string, status domain.TestStatus, message string) {
	var busy []string
	t.Walk(id, func(n *tree.Node) {
		if n.Kind == tree.KindTestCase && n.Busy {
			busy = append(busy, n.ID)
		}
	})
	for _, leaf := range busy {
		if st, ok := t.Finish(leaf, status, message, 0); ok {
			s.reporter.NodeChanged(st)
		}
	}
}

// resetQueued returns the queued leaves below id to unset
func (s *Session) resetQueued(t *tree.Tree, id string) {
	var queued []string
	t.Walk(id, func(n *tree.Node) {
		if n.Kind == tree.KindTestCase && n.Status == domain.StatusQueued {
			queued = append(queued, n.ID)
		}
	})
	for _, leaf := range queued {
		if st, ok := t.SetStatus(leaf, domain.StatusUnset, ""); ok {
			s.reporter.NodeChanged(st)
		}
	}
	for _, st := range t.Rollup(id) {
		s.reporter.NodeChanged(st)
	}
}

func (s *Session) results(t *tree.Tree, scope *runScope) []domain.CaseResult {
	results := make([]domain.CaseResult, 0, len(scope.leaves))
	for _, id := range scope.leaves {
		n, ok := t.Node(id)
		if !ok {
			continue
		}
		st, _ := t.State(id)
		if !st.Status.IsTerminal() {
			continue
		}
		res := domain.CaseResult{
			ID:         id,
			Script:     st.Script,
			Name:       st.Name,
			Status:     st.Status,
			DurationMS: float64(st.Duration) / float64(time.Millisecond),
			Message:    st.Message,
			File:       n.File,
		}
		if n.Position != nil {
			res.Line = n.Position.Line + 1
		}
		results = append(results, res)
	}
	return results
}

// runGUI starts VUnit with -g for each node. Output is not interpreted.
// Nodes inside an excluded subtree are dropped. A container that only has
// some excluded descendants still opens as a whole, since VUnit takes a
// single pattern per invocation.
func (s *Session) runGUI(ctx context.Context, t *tree.Tree, nodes []*tree.Node, exclude []string, all bool) (*domain.RunRecord, error) {
	scope := &runScope{tree: t, excluded: exclude}
	kept := nodes[:0:0]
	for _, n := range nodes {
		if scope.isExcluded(n.ID) {
			s.log.Debugf("not opening excluded %s in GUI mode", n.ID)
			continue
		}
		kept = append(kept, n)
	}
	nodes = kept

	if !s.config.ExecuteMultipleGUITestcases && len(nodes) > 0 {
		if all || len(nodes) > 1 || !nodes[0].IsLeaf() {
			return nil, ErrMultipleGUIDisabled
		}
	}

	start := time.Now()
	record := &domain.RunRecord{Meta: domain.RunMeta{GUI: true}}
	scripts := make(map[string]bool)
	for _, n := range nodes {
		if ctx.Err() != nil {
			record.Meta.Cancelled = true
			break
		}
		scripts[n.Script] = true
		_, err := s.runner.Execute(ctx, n.Script, s.RunArgs(n, true), func(p *execution.Process) {
			p.OnLine(s.reporter.Output)
			p.OnStderr(s.reporter.Output)
		})
		switch {
		case isCancelled(err):
			record.Meta.Cancelled = true
		case err != nil:
			msg := "Error in Execution of " + n.Script
			s.log.Errorf("%s: %v", msg, err)
			if st, ok := t.SetStatus(n.ID, domain.StatusErrored, msg); ok {
				s.reporter.NodeChanged(st)
			}
		}
	}
	record.Meta.Scripts = len(scripts)
	record.Finish(time.Since(start))
	return record, nil
}

// isCancelled reports whether err comes from a run that was killed on request
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
