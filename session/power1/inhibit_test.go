// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

type fakePeerWatcher struct {
	watched map[string]int
}

func newFakePeerWatcher() *fakePeerWatcher {
	return &fakePeerWatcher{watched: make(map[string]int)}
}

func (w *fakePeerWatcher) Watch(peer string) {
	w.watched[peer]++
}

func (w *fakePeerWatcher) Unwatch(peer string) {
	w.watched[peer]--
	if w.watched[peer] == 0 {
		delete(w.watched, peer)
	}
}

func TestInhibitRegistry(t *testing.T) {
	watcher := newFakePeerWatcher()
	r := NewInhibitRegistry(watcher)
	var edges []bool
	listChanges := 0
	r.OnInhibitedChanged = func(inhibited bool) {
		edges = append(edges, inhibited)
	}
	r.OnListChanged = func() {
		listChanges++
	}

	assert.False(t, r.HasInhibit())
	c1, err := r.Inhibit("movie", "playing", ":1.10")
	require.NoError(t, err)
	c2, err := r.Inhibit("copy", "transfer", ":1.10")
	require.NoError(t, err)
	c3, err := r.Inhibit("burner", "writing", ":1.11")
	require.NoError(t, err)

	assert.Greater(t, c2, c1)
	assert.Greater(t, c3, c2)
	assert.LessOrEqual(t, c2-c1, uint32(cookieRange))
	assert.True(t, r.HasInhibit())
	assert.Equal(t, []string{"movie", "copy", "burner"}, r.List())
	assert.Equal(t, map[string]int{":1.10": 1, ":1.11": 1}, watcher.watched)
	assert.Equal(t, []bool{true}, edges)
	assert.Equal(t, 3, listChanges)

	require.NoError(t, r.UnInhibit(c1))
	assert.Equal(t, []string{"copy", "burner"}, r.List())
	// peer still holds another cookie
	assert.Contains(t, watcher.watched, ":1.10")

	err = r.UnInhibit(c1)
	assert.True(t, xerrors.Is(err, ErrCookieNotFound))
	assert.Equal(t, 4, listChanges)

	require.NoError(t, r.UnInhibit(c2))
	require.NoError(t, r.UnInhibit(c3))
	assert.False(t, r.HasInhibit())
	assert.Empty(t, r.List())
	assert.Empty(t, watcher.watched)
	assert.Equal(t, []bool{true, false}, edges)
}

func TestInhibitInvalidArguments(t *testing.T) {
	r := NewInhibitRegistry(nil)
	_, err := r.Inhibit("", "reason", ":1.1")
	assert.True(t, xerrors.Is(err, ErrInvalidArguments))
	_, err = r.Inhibit("app", "", ":1.1")
	assert.True(t, xerrors.Is(err, ErrInvalidArguments))
	assert.False(t, r.HasInhibit())
}

func TestInhibitRemovePeer(t *testing.T) {
	watcher := newFakePeerWatcher()
	r := NewInhibitRegistry(watcher)
	var edges []bool
	r.OnInhibitedChanged = func(inhibited bool) {
		edges = append(edges, inhibited)
	}

	_, err := r.Inhibit("a", "r", ":1.5")
	require.NoError(t, err)
	_, err = r.Inhibit("b", "r", ":1.5")
	require.NoError(t, err)
	c, err := r.Inhibit("c", "r", ":1.6")
	require.NoError(t, err)

	r.RemovePeer(":1.5")
	assert.Equal(t, []string{"c"}, r.List())
	assert.NotContains(t, watcher.watched, ":1.5")
	assert.Equal(t, []bool{true}, edges)

	// unknown peer is a no-op
	r.RemovePeer(":1.99")
	assert.Equal(t, []string{"c"}, r.List())

	r.RemovePeer(":1.6")
	assert.False(t, r.HasInhibit())
	assert.Equal(t, []bool{true, false}, edges)
	assert.True(t, xerrors.Is(r.UnInhibit(c), ErrCookieNotFound))
}

func TestInhibitCookieWraps(t *testing.T) {
	r := NewInhibitRegistry(nil)
	r.inhibitors = []*Inhibitor{
		{Cookie: 1, AppName: "low", Reason: "r", Peer: ":1.1"},
		{Cookie: math.MaxUint32 - 5, AppName: "high", Reason: "r", Peer: ":1.1"},
	}
	cookie, err := r.Inhibit("next", "r", ":1.2")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), cookie)

	snapshot := r.snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, ":1.2", snapshot[2].Peer)
}

func TestInhibitCookiesStayUnique(t *testing.T) {
	peers := []string{":1.1", ":1.2", ":1.3", ":1.4"}
	for seed := int64(1); seed <= 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		watcher := newFakePeerWatcher()
		r := NewInhibitRegistry(watcher)
		live := make(map[uint32]string)

		for i := 0; i < 300; i++ {
			switch op := rnd.Intn(10); {
			case op < 6:
				peer := peers[rnd.Intn(len(peers))]
				cookie, err := r.Inhibit("app", "reason", peer)
				require.NoError(t, err)
				assert.NotZero(t, cookie)
				_, dup := live[cookie]
				require.False(t, dup, "seed %d: cookie %d handed out twice", seed, cookie)
				live[cookie] = peer
			case op < 9:
				if len(live) == 0 {
					continue
				}
				var cookie uint32
				for cookie = range live {
					break
				}
				require.NoError(t, r.UnInhibit(cookie))
				delete(live, cookie)
			default:
				peer := peers[rnd.Intn(len(peers))]
				r.RemovePeer(peer)
				for cookie, p := range live {
					if p == peer {
						delete(live, cookie)
					}
				}
			}

			snapshot := r.snapshot()
			require.Len(t, snapshot, len(live), "seed %d", seed)
			seen := make(map[uint32]bool)
			for _, inh := range snapshot {
				assert.False(t, seen[inh.Cookie], "seed %d: duplicate cookie %d", seed, inh.Cookie)
				seen[inh.Cookie] = true
				assert.Equal(t, live[inh.Cookie], inh.Peer)
			}
			assert.Equal(t, len(live) > 0, r.HasInhibit())
		}
		// a peer is watched exactly while it holds an inhibitor
		for _, peer := range peers {
			held := false
			for _, p := range live {
				held = held || p == peer
			}
			assert.Equal(t, held, watcher.watched[peer] > 0, "seed %d peer %s", seed, peer)
		}
	}
}
