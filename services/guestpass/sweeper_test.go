package guestpass_test

import (
	"context"
	"testing"
	"time"

	passModel "residence-access/models/guestpass"
	passService "residence-access/services/guestpass"
)

func TestSweeperStartStop(t *testing.T) {
	svc, _ := testService(t, 1000)

	sweeper := passService.NewSweeper(svc, passService.SweeperConfig{
		Interval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper.Start(ctx)
	// Stop should return once the loop has exited.
	sweeper.Stop()
}

func TestSweeperRunsImmediateSweep(t *testing.T) {
	svc, clock := testService(t, 1000)

	pass := issue(t, svc, validInput())
	*clock = 2000

	// A long interval means only the startup sweep runs before Stop.
	sweeper := passService.NewSweeper(svc, passService.SweeperConfig{
		Interval: time.Hour,
	})
	sweeper.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for {
		var count int64
		err := svc.DB.Model(&passModel.GuestPassHistory{}).
			Where("id = ?", pass.ID).
			Count(&count).Error
		if err != nil {
			t.Fatalf("count history: %v", err)
		}
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup sweep did not archive the expired pass")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sweeper.Stop()
}

func TestSweeperStopCancelsContext(t *testing.T) {
	svc, _ := testService(t, 1000)

	sweeper := passService.NewSweeper(svc, passService.SweeperConfig{
		Interval: 10 * time.Millisecond,
	})
	sweeper.Start(context.Background())

	// Let a few ticks fire against an empty table, then stop.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
}
