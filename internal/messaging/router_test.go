package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func echoHandler() Handler {
	return HandlerFunc(func(_ context.Context, msg Message) (Response, error) {
		return Response{Status: string(msg.Action), Color: msg.Color}, nil
	})
}

func TestSendToListener(t *testing.T) {
	r := NewRouter(nil)
	defer r.Close()

	if _, err := r.Listen(Background, echoHandler()); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	resp, err := r.Send(context.Background(), Background, ColorPicked("#112233"))
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if resp.Status != string(ActionColorPicked) || resp.Color != "#112233" {
		t.Errorf("Send() = %+v", resp)
	}
}

func TestSendWithoutListener(t *testing.T) {
	r := NewRouter(nil)

	_, err := r.Send(context.Background(), Tab(7), ScreenshotReady("data:,"))
	if !errors.Is(err, ErrNoListener) {
		t.Fatalf("Send() error = %v, want ErrNoListener", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	r := NewRouter(nil)
	l, err := r.Listen(Popup, echoHandler())
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	if !r.Listening(Popup) {
		t.Fatal("Listening() = false after Listen")
	}

	l.Close()
	l.Close()

	if r.Listening(Popup) {
		t.Error("Listening() = true after Close")
	}
	if _, err := r.Send(context.Background(), Popup, GetPickedColor()); !errors.Is(err, ErrNoListener) {
		t.Errorf("Send() error = %v, want ErrNoListener", err)
	}

	// The endpoint can be claimed again once released.
	if _, err := r.Listen(Popup, echoHandler()); err != nil {
		t.Errorf("Listen() after Close error: %v", err)
	}
}

func TestListenTwice(t *testing.T) {
	r := NewRouter(nil)
	defer r.Close()

	if _, err := r.Listen(Background, echoHandler()); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	if _, err := r.Listen(Background, echoHandler()); !errors.Is(err, ErrAlreadyListening) {
		t.Errorf("second Listen() error = %v, want ErrAlreadyListening", err)
	}
}

func TestHandlerErrorPropagates(t *testing.T) {
	r := NewRouter(nil)
	defer r.Close()

	boom := errors.New("boom")
	if _, err := r.Listen(Background, HandlerFunc(func(context.Context, Message) (Response, error) {
		return Response{}, boom
	})); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	if _, err := r.Send(context.Background(), Background, GetPickedColor()); !errors.Is(err, boom) {
		t.Errorf("Send() error = %v, want boom", err)
	}
}

func TestHandlersRunOneAtATime(t *testing.T) {
	r := NewRouter(nil)
	defer r.Close()

	var active, maxActive int32
	if _, err := r.Listen(Background, HandlerFunc(func(context.Context, Message) (Response, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return Response{}, nil
	})); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Send(context.Background(), Background, GetPickedColor()); err != nil {
				t.Errorf("Send() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxActive); got != 1 {
		t.Errorf("max concurrent handlers = %d, want 1", got)
	}
}

func TestSendHonoursContext(t *testing.T) {
	r := NewRouter(nil)
	defer r.Close()

	release := make(chan struct{})
	if _, err := r.Listen(Background, HandlerFunc(func(context.Context, Message) (Response, error) {
		<-release
		return Response{}, nil
	})); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := r.Send(ctx, Background, GetPickedColor()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send() error = %v, want DeadlineExceeded", err)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "screenshot", msg: ScreenshotReady("data:image/png;base64,AA==")},
		{name: "screenshot without data", msg: ScreenshotReady(""), wantErr: true},
		{name: "picked", msg: ColorPicked("#ABCDEF")},
		{name: "picked invalid colour", msg: ColorPicked("#ABC"), wantErr: true},
		{name: "get", msg: GetPickedColor()},
		{name: "unknown", msg: Message{Action: "openPopup"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.msg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTabEndpoint(t *testing.T) {
	if Tab(3) != "tab:3" {
		t.Errorf("Tab(3) = %q", Tab(3))
	}
}
