//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/session"
)

func TestSessionService_GetCreatesLazily(t *testing.T) {
	svc := NewSessionService()
	_, ok := svc.Peek(42)
	assert.False(t, ok)
	assert.Equal(t, 0, svc.Len())

	sess := svc.Get(42)
	require.NotNil(t, sess)
	assert.Equal(t, session.ScreenAwaitingDate, sess.Screen)
	assert.Same(t, sess, svc.Get(42))
	assert.Equal(t, 1, svc.Len())
}

func TestSessionService_ResetReplaces(t *testing.T) {
	var resets []int64
	svc := NewSessionService(WithOnReset(func(id int64) { resets = append(resets, id) }))
	sess := svc.Get(7)
	sess.Date = "01.01"
	sess.Format = record.FormatGroup
	sess.Screen = session.ScreenAwaitingLocation

	fresh := svc.Reset(7)
	assert.NotSame(t, sess, fresh)
	assert.Equal(t, session.ScreenAwaitingDate, fresh.Screen)
	assert.Empty(t, fresh.Date)
	assert.Equal(t, record.FormatUnset, fresh.Format)
	assert.Same(t, fresh, svc.Get(7))
	assert.Equal(t, []int64{7}, resets)
}

func TestSessionService_ConcurrentGetReturnsSameSession(t *testing.T) {
	svc := NewSessionService(WithCapacity(4))
	var wg sync.WaitGroup
	got := make([]*session.Session, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = svc.Get(1)
		}(i)
	}
	wg.Wait()
	for _, s := range got {
		assert.Same(t, got[0], s)
	}
}

func TestSessionService_LockSerializesPerUser(t *testing.T) {
	svc := NewSessionService()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.Lock(5)
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxInside) {
				atomic.StoreInt32(&maxInside, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestSessionService_LockIsPerUser(t *testing.T) {
	svc := NewSessionService()
	unlock := svc.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := svc.Lock(2)
		release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock of user 2 blocked on user 1")
	}
}

func TestSessionService_List(t *testing.T) {
	svc := NewSessionService()
	svc.Get(3)
	svc.Get(1)
	svc.Get(2).Date = "02.02"

	list := svc.List()
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{list[0].UserID, list[1].UserID, list[2].UserID})
	assert.Equal(t, "02.02", list[1].Date)
	assert.Equal(t, "awaiting_date", list[0].Screen)
}

func TestSessionService_SnapshotWaitsForUserLock(t *testing.T) {
	svc := NewSessionService()
	svc.Get(7)

	unlock := svc.Lock(7)
	done := make(chan session.Snapshot, 1)
	go func() {
		snap, _ := svc.Peek(7)
		done <- snap
	}()

	select {
	case <-done:
		t.Fatal("snapshot taken while the user lock was held")
	case <-time.After(20 * time.Millisecond):
	}
	svc.Get(7).Date = "07.07"
	unlock()

	select {
	case snap := <-done:
		assert.Equal(t, "07.07", snap.Date)
	case <-time.After(time.Second):
		t.Fatal("snapshot never completed")
	}
}

func TestSessionService_ListDuringMutation(t *testing.T) {
	svc := NewSessionService()
	sess := svc.Get(9)
	sess.Format = record.FormatDiscountedGroup
	sess.LoadOptions([]string{"A", "B"})

	const rounds = 500
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			unlock := svc.Lock(9)
			svc.Get(9).Selection.Apply("A")
			unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = svc.List()
		}
	}()
	wg.Wait()

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, "500x A", list[0].Selected)
}
