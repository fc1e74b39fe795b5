// Package session keeps opened robot descriptions in memory together with
// their actuation state and serializes every update and resolve per robot.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/urdf-visualizer/backend/internal/history"
	"github.com/urdf-visualizer/backend/internal/kinematics"
	"github.com/urdf-visualizer/backend/internal/mesh"
	"github.com/urdf-visualizer/backend/internal/models"
	"github.com/urdf-visualizer/backend/internal/parser"
	"github.com/urdf-visualizer/backend/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrValidation reports a request that names unknown joints or links,
	// or carries values that cannot be applied.
	ErrValidation = errors.New("validation failed")
	// ErrHistoryDisabled is returned by History when no pose store is attached.
	ErrHistoryDisabled = errors.New("pose history disabled")
)

// OpenRequest identifies the document of a new session. Exactly one of
// FileID (an uploaded file) and Path (a local file) is required.
type OpenRequest struct {
	FileID      string `json:"fileId,omitempty"`
	Path        string `json:"path,omitempty"`
	PackageRoot string `json:"packageRoot,omitempty"`
	BaseLink    string `json:"baseLink,omitempty"`
}

// Manager handles open robot sessions.
//
// Lock order: mu may be held while taking a robotState's mu, never the
// other way round.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*robotState

	store   storage.Store
	history *history.Store
	watcher *docWatcher
	opts    Options
	logger  *slog.Logger
}

// robotState holds one robot and everything derived from it. All fields are
// guarded by mu.
type robotState struct {
	mu           sync.Mutex
	session      models.RobotSession
	robot        *models.Robot
	tree         *kinematics.Tree
	lastAccessed time.Time

	subscribers map[int]chan *models.PoseSnapshot
	nextSub     int
}

// NewManager creates a session manager. store resolves uploaded file ids and
// hist, when non-nil, records every resolved pose.
func NewManager(store storage.Store, hist *history.Store, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 1000
	}
	m := &Manager{
		sessions: make(map[string]*robotState),
		store:    store,
		history:  hist,
		opts:     opts,
		logger:   logger.With("component", "session"),
	}
	if opts.Watch {
		w, err := newDocWatcher(m.logger, func(id string) {
			if _, err := m.Reload(context.Background(), id); err != nil {
				m.logger.Warn("reload after change failed", "session", id, "error", err)
			}
		})
		if err != nil {
			m.logger.Warn("document watching unavailable", "error", err)
		} else {
			m.watcher = w
		}
	}
	return m
}

// Shutdown stops watching documents and drops every session.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_ = m.Close(ctx, id)
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// Open parses a document and starts a session for it. The document must
// resolve without cycles from the chosen base link.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*models.RobotSession, error) {
	path, err := m.documentPath(req)
	if err != nil {
		return nil, err
	}

	robot, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	root, warning, err := m.packageRoot(req.PackageRoot, path)
	if err != nil {
		return nil, err
	}

	tree := kinematics.BuildTree(robot)
	base := m.chooseBaseLink(robot, tree, req.BaseLink)
	if _, err := kinematics.Resolve(robot, base); err != nil {
		return nil, err
	}

	now := time.Now()
	state := &robotState{
		session: models.RobotSession{
			ID:           uuid.New().String(),
			FileID:       req.FileID,
			DocumentPath: path,
			PackageRoot:  root,
			Warning:      warning,
			RobotName:    robot.Name,
			BaseLink:     base,
			Status:       models.SessionStatusReady,
			Stats:        robot.Stats(),
			Revision:     1,
			OpenedAt:     now.UnixMilli(),
			LoadedAt:     now.UnixMilli(),
		},
		robot:        robot,
		tree:         tree,
		lastAccessed: now,
		subscribers:  make(map[int]chan *models.PoseSnapshot),
	}

	for _, id := range m.evictIfNeeded() {
		m.release(ctx, id)
	}

	if m.watcher != nil {
		if err := m.watcher.Add(state.session.ID, path); err != nil {
			m.logger.Warn("cannot watch document", "path", path, "error", err)
		} else {
			state.session.Watching = true
		}
	}

	m.mu.Lock()
	m.sessions[state.session.ID] = state
	m.mu.Unlock()

	state.mu.Lock()
	snap, _ := state.snapshotLocked()
	info := state.session
	state.mu.Unlock()
	m.record(ctx, snap)

	m.logger.Info("session opened",
		"session", info.ID, "robot", info.RobotName, "baseLink", base,
		"links", info.Stats.Links, "joints", info.Stats.Joints, "packageRoot", root)
	return &info, nil
}

func (m *Manager) documentPath(req OpenRequest) (string, error) {
	switch {
	case req.FileID != "" && req.Path != "":
		return "", fmt.Errorf("%w: give either fileId or path", ErrValidation)
	case req.FileID != "":
		if m.store == nil {
			return "", fmt.Errorf("%w: no file store", storage.ErrFileNotFound)
		}
		return m.store.GetFilePath(req.FileID)
	case req.Path != "":
		return mesh.ExpandPath(req.Path)
	default:
		return "", fmt.Errorf("%w: fileId or path is required", ErrValidation)
	}
}

// packageRoot returns the explicit root when given, otherwise the located
// one. A document outside any package gets an empty root and a warning
// naming why, so the caller knows package:// meshes will not resolve.
func (m *Manager) packageRoot(explicit, docPath string) (root, warning string, err error) {
	if explicit != "" {
		root, err = mesh.ExpandPath(explicit)
		return root, "", err
	}
	root, err = mesh.LocatePackageRoot(docPath)
	if err != nil {
		m.logger.Info("no package root", "document", docPath, "error", err)
		return "", err.Error(), nil
	}
	return root, "", nil
}

// chooseBaseLink keeps an explicit base link as given. Otherwise the
// configured default is used when the robot declares it, else the first root.
func (m *Manager) chooseBaseLink(robot *models.Robot, tree *kinematics.Tree, requested string) string {
	if requested != "" {
		return requested
	}
	if _, ok := robot.Link(m.opts.DefaultBaseLink); ok {
		return m.opts.DefaultBaseLink
	}
	if len(tree.Roots) > 0 {
		return tree.Roots[0]
	}
	return m.opts.DefaultBaseLink
}

// evictIfNeeded drops the least recently used sessions so one more fits.
// It returns the evicted ids for release outside the lock.
func (m *Manager) evictIfNeeded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < m.opts.MaxSessions {
		return nil
	}

	type aged struct {
		id   string
		last time.Time
	}
	candidates := make([]aged, 0, len(m.sessions))
	for id, state := range m.sessions {
		state.mu.Lock()
		candidates = append(candidates, aged{id, state.lastAccessed})
		state.mu.Unlock()
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].last.Before(candidates[j].last)
	})

	toFree := len(m.sessions) - m.opts.MaxSessions + 1
	evicted := make([]string, 0, toFree)
	for _, c := range candidates[:toFree] {
		m.detachLocked(c.id)
		evicted = append(evicted, c.id)
		m.logger.Info("evicted session to stay under limit", "session", c.id)
	}
	return evicted
}

// detachLocked removes a session from the map and closes its subscribers.
// m.mu must be held.
func (m *Manager) detachLocked(id string) {
	state, ok := m.sessions[id]
	if !ok {
		return
	}
	delete(m.sessions, id)

	state.mu.Lock()
	for key, ch := range state.subscribers {
		close(ch)
		delete(state.subscribers, key)
	}
	state.mu.Unlock()
}

// release frees what a detached session held outside the manager.
func (m *Manager) release(ctx context.Context, id string) {
	if m.watcher != nil {
		m.watcher.Remove(id)
	}
	if m.history != nil {
		n, err := m.history.Count(ctx, id)
		if err != nil {
			m.logger.Warn("failed to count pose history", "session", id, "error", err)
		}
		if err := m.history.Forget(ctx, id); err != nil {
			m.logger.Warn("failed to drop pose history", "session", id, "error", err)
			return
		}
		m.logger.Debug("pose history dropped", "session", id, "samples", n)
	}
}

func (m *Manager) state(id string) (*robotState, error) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return state, nil
}

// Get returns a copy of the session metadata.
func (m *Manager) Get(id string) (*models.RobotSession, bool) {
	state, err := m.state(id)
	if err != nil {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	info := state.session
	return &info, true
}

// List returns every session, oldest first.
func (m *Manager) List() []models.RobotSession {
	m.mu.RLock()
	states := make([]*robotState, 0, len(m.sessions))
	for _, s := range m.sessions {
		states = append(states, s)
	}
	m.mu.RUnlock()

	out := make([]models.RobotSession, 0, len(states))
	for _, s := range states {
		s.mu.Lock()
		out = append(out, s.session)
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt != out[j].OpenedAt {
			return out[i].OpenedAt < out[j].OpenedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close ends a session.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.detachLocked(id)
	m.mu.Unlock()

	m.release(ctx, id)
	m.logger.Info("session closed", "session", id)
	return nil
}

// Touch marks a session as in use so cleanup keeps it.
func (m *Manager) Touch(id string) bool {
	state, err := m.state(id)
	if err != nil {
		return false
	}
	state.mu.Lock()
	state.lastAccessed = time.Now()
	state.mu.Unlock()
	return true
}

// CleanupOldSessions closes sessions idle for longer than maxAge. Sessions
// touched within the keep-alive window or with live subscribers are kept.
func (m *Manager) CleanupOldSessions(ctx context.Context, maxAge time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-m.opts.KeepAliveWindow)

	m.mu.Lock()
	var expired []string
	for id, state := range m.sessions {
		state.mu.Lock()
		last, live := state.lastAccessed, len(state.subscribers) > 0
		state.mu.Unlock()

		if live || last.After(keepAliveCutoff) {
			continue
		}
		if last.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		m.detachLocked(id)
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.release(ctx, id)
		m.logger.Info("cleaned up idle session", "session", id)
	}
	return len(expired)
}

// Robot returns a deep copy of the session's robot.
func (m *Manager) Robot(id string) (*models.Robot, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.robot.Clone(), nil
}

// TreeView is the kinematic tree in both flat and nested form.
type TreeView struct {
	Roots    []string            `json:"roots"`
	Children map[string][]string `json:"children"`
	Nodes    []*models.TreeNode  `json:"nodes"`
}

// Tree returns the session's kinematic tree.
func (m *Manager) Tree(id string) (*TreeView, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	children := make(map[string][]string, len(state.tree.Children))
	for k, v := range state.tree.Children {
		children[k] = append([]string(nil), v...)
	}
	return &TreeView{
		Roots:    append([]string(nil), state.tree.Roots...),
		Children: children,
		Nodes:    state.tree.Nodes(state.robot),
	}, nil
}

// Stats returns link, joint and mesh counts.
func (m *Manager) Stats(id string) (models.RobotStats, error) {
	state, err := m.state(id)
	if err != nil {
		return models.RobotStats{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.session.Stats, nil
}

// Transforms resolves the current pose.
func (m *Manager) Transforms(id string) (*models.PoseSnapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.snapshotLocked()
}

// JointFrames returns the world frame of every joint whose child resolved.
func (m *Manager) JointFrames(id string) ([]models.JointFrame, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	t, err := kinematics.Resolve(state.robot, state.session.BaseLink)
	if err != nil {
		return nil, err
	}
	return kinematics.JointFrames(state.robot, t), nil
}

// Meshes resolves every mesh reference against the session's package root.
func (m *Manager) Meshes(id string) ([]models.MeshReference, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	robot, root := state.robot, state.session.PackageRoot
	state.mu.Unlock()

	// The robot pointer is replaced on reload, never mutated in place for
	// mesh data, so the disk walk runs without the lock.
	return mesh.ResolveRobot(robot, root), nil
}

// PackageTree lists the session's package directory.
func (m *Manager) PackageTree(id string) (*models.FileNode, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	root := state.session.PackageRoot
	state.mu.Unlock()

	if root == "" {
		return nil, mesh.ErrPackageRootNotFound
	}
	return mesh.ListTree(root)
}

// History returns the recorded positions of link, oldest first. An empty
// link returns samples of every link.
func (m *Manager) History(ctx context.Context, id, link string, limit int) ([]models.PoseSample, error) {
	if m.history == nil {
		return nil, ErrHistoryDisabled
	}
	if _, err := m.state(id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > m.opts.HistoryLimit {
		limit = m.opts.HistoryLimit
	}
	return m.history.Trajectory(ctx, id, link, limit)
}

// Reload re-parses the session's document. On failure the previous robot is
// kept and the session records the error. Joint values carry over to joints
// with the same name.
func (m *Manager) Reload(ctx context.Context, id string) (*models.RobotSession, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	path := state.session.DocumentPath
	state.mu.Unlock()

	robot, err := parser.ParseFile(path)

	state.mu.Lock()
	if err == nil {
		err = state.reloadLocked(robot, m.opts.DefaultBaseLink)
	}
	if err != nil {
		state.session.Status = models.SessionStatusError
		state.session.Error = err.Error()
		state.mu.Unlock()
		m.logger.Warn("reload failed, keeping previous robot", "session", id, "error", err)
		return nil, err
	}
	snap, _ := state.snapshotLocked()
	state.publishLocked(snap)
	info := state.session
	state.mu.Unlock()

	m.record(ctx, snap)
	m.logger.Info("session reloaded", "session", id, "revision", info.Revision)
	return &info, nil
}

// reloadLocked swaps in robot when it resolves from the current (or a
// fallback) base link.
func (s *robotState) reloadLocked(robot *models.Robot, defaultBase string) error {
	for i := range robot.Joints {
		if prev, ok := s.robot.Joint(robot.Joints[i].Name); ok {
			robot.Joints[i].JointValue = prev.JointValue
		}
	}

	tree := kinematics.BuildTree(robot)
	base := s.session.BaseLink
	if _, ok := robot.Link(base); !ok {
		if _, ok := robot.Link(defaultBase); ok {
			base = defaultBase
		} else if len(tree.Roots) > 0 {
			base = tree.Roots[0]
		}
	}
	if _, err := kinematics.Resolve(robot, base); err != nil {
		return err
	}

	s.robot = robot
	s.tree = tree
	s.session.BaseLink = base
	s.session.RobotName = robot.Name
	s.session.Stats = robot.Stats()
	s.session.Status = models.SessionStatusReady
	s.session.Error = ""
	s.session.Revision++
	s.session.Sequence++
	s.session.LoadedAt = time.Now().UnixMilli()
	return nil
}

// snapshotLocked resolves the current pose. s.mu must be held.
func (s *robotState) snapshotLocked() (*models.PoseSnapshot, error) {
	t, err := kinematics.Resolve(s.robot, s.session.BaseLink)
	if err != nil {
		return nil, err
	}
	list, missing := kinematics.LinkTransforms(s.robot, t)
	return &models.PoseSnapshot{
		SessionID:   s.session.ID,
		BaseLink:    s.session.BaseLink,
		Sequence:    s.session.Sequence,
		JointValues: s.robot.JointValues(),
		Transforms:  list,
		Missing:     missing,
	}, nil
}

func (m *Manager) record(ctx context.Context, snap *models.PoseSnapshot) {
	if m.history == nil || snap == nil {
		return
	}
	if err := m.history.Record(ctx, snap, time.Now()); err != nil {
		m.logger.Warn("failed to record pose", "session", snap.SessionID, "sequence", snap.Sequence, "error", err)
	}
}
