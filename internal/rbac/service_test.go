package rbac

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	roles      []Role
	menus      []Menu
	menuByCode map[string]int64
	rolesErr   error
	roleCalls  atomic.Int32
	lastCodes  []string
	// entered receives once per ListAdminRoles call; release unblocks them.
	entered chan struct{}
	release chan struct{}
}

func (s *stubRepo) ListAdminRoles(ctx context.Context, adminID int64) ([]Role, error) {
	s.roleCalls.Add(1)
	if s.release != nil {
		s.entered <- struct{}{}
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.roles, s.rolesErr
}

func blockingRepo(roles ...Role) *stubRepo {
	return &stubRepo{roles: roles, entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (s *stubRepo) ListMenus(ctx context.Context) ([]Menu, error) {
	return s.menus, nil
}

func (s *stubRepo) MenuIDsForCodes(ctx context.Context, codes []string) ([]int64, error) {
	s.lastCodes = codes
	var out []int64
	for _, code := range codes {
		if id, ok := s.menuByCode[code]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestEffectivePermissionsSkipsDisabledRoles(t *testing.T) {
	repo := &stubRepo{roles: []Role{
		role(1, StatusActive, "admin:list"),
		role(2, StatusDisabled, "admin:delete"),
	}}
	svc := NewService(repo)

	set, err := svc.EffectivePermissions(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin:list"}, set.Codes())
}

func TestEffectivePermissionsError(t *testing.T) {
	repo := &stubRepo{rolesErr: errors.New("boom")}
	_, err := NewService(repo).EffectivePermissions(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAdminMenus(t *testing.T) {
	repo := &stubRepo{
		roles: []Role{role(1, StatusActive, "admin:list", "admin:create")},
		menus: []Menu{
			{ID: 1, ParentID: 0, Sort: 1, Kind: MenuKindDirectory, Status: StatusActive, Title: "System"},
			{ID: 2, ParentID: 1, Sort: 1, Kind: MenuKindPage, Status: StatusActive, Title: "Admins"},
			{ID: 3, ParentID: 1, Sort: 2, Kind: MenuKindPage, Status: StatusActive, Title: "Roles"},
		},
		menuByCode: map[string]int64{"admin:list": 2},
	}
	tree, err := NewService(repo).AdminMenus(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "System", tree[0].Title)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Admins", tree[0].Children[0].Title)
	assert.Equal(t, []string{"admin:create", "admin:list"}, repo.lastCodes)
}

func TestAdminMenusWithoutRoles(t *testing.T) {
	repo := &stubRepo{menus: []Menu{{ID: 1, Kind: MenuKindPage, Status: StatusActive}}}
	tree, err := NewService(repo).AdminMenus(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
	assert.Nil(t, repo.lastCodes)
}

func TestMenuTree(t *testing.T) {
	repo := &stubRepo{menus: []Menu{
		{ID: 2, ParentID: 1, Kind: MenuKindPage},
		{ID: 1, ParentID: 0, Kind: MenuKindDirectory},
	}}
	tree, err := NewService(repo).MenuTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, int64(2), tree[0].Children[0].ID)
}

func TestEffectivePermissionsCollapsesConcurrentLookups(t *testing.T) {
	repo := blockingRepo(role(1, StatusActive, "admin:list"))
	svc := NewService(repo)

	const callers = 8
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		errs    = make(chan error, callers)
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.EffectivePermissions(context.Background(), 7)
		errs <- err
	}()
	<-repo.entered

	started.Add(callers - 1)
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			set, err := svc.EffectivePermissions(context.Background(), 7)
			if err == nil && !set.Has("admin:list") {
				err = errors.New("missing admin:list")
			}
			errs <- err
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(repo.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, repo.roleCalls.Load())
}

func TestEffectivePermissionsSurvivesFirstCallerCancel(t *testing.T) {
	repo := blockingRepo(role(1, StatusActive, "admin:list"))
	svc := NewService(repo)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.EffectivePermissions(ctxA, 7)
		errA <- err
	}()
	<-repo.entered

	type result struct {
		set PermissionSet
		err error
	}
	resB := make(chan result, 1)
	go func() {
		set, err := svc.EffectivePermissions(context.Background(), 7)
		resB <- result{set, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(repo.release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.True(t, res.set.Has("admin:list"))
	case <-time.After(2 * time.Second):
		t.Fatalf("second caller never returned")
	}
	assert.EqualValues(t, 1, repo.roleCalls.Load())
}
