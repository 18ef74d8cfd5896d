package notify_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"practicebot/internal/notify"

	"github.com/smartystreets/goconvey/convey"
)

func TestWriter(t *testing.T) {
	convey.Convey("Given a writer dispatcher", t, func() {
		var buf bytes.Buffer
		d := notify.NewWriter(&buf)
		ctx := context.Background()

		convey.Convey("When two messages are sent", func() {
			convey.So(d.Send(ctx, "\n10/18(水) 16-21 宝A (Carol)\nAliceBob"), convey.ShouldBeNil)
			convey.So(d.Send(ctx, "second"), convey.ShouldBeNil)

			convey.Convey("Then both are printed in order with separators", func() {
				convey.So(buf.String(), convey.ShouldEqual,
					"\n10/18(水) 16-21 宝A (Carol)\nAliceBob\n----\nsecond\n----\n")
			})
		})

		convey.Convey("When the message is empty", func() {
			err := d.Send(ctx, "")
			convey.So(errors.Is(err, notify.ErrEmptyMessage), convey.ShouldBeTrue)
			convey.So(buf.Len(), convey.ShouldEqual, 0)
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			convey.So(errors.Is(d.Send(cctx, "late"), context.Canceled), convey.ShouldBeTrue)
		})
	})
}

func TestMemoryAndFunc(t *testing.T) {
	convey.Convey("Given a memory dispatcher", t, func() {
		var m notify.Memory
		ctx := context.Background()
		convey.So(m.Send(ctx, "a"), convey.ShouldBeNil)
		convey.So(m.Send(ctx, "b"), convey.ShouldBeNil)

		convey.Convey("Then it remembers messages and hands out copies", func() {
			got := m.Messages()
			convey.So(got, convey.ShouldResemble, []string{"a", "b"})
			got[0] = "changed"
			convey.So(m.Messages()[0], convey.ShouldEqual, "a")
		})
	})

	convey.Convey("Given a function dispatcher", t, func() {
		boom := errors.New("boom")
		var d notify.Dispatcher = notify.Func(func(context.Context, string) error { return boom })
		convey.So(d.Send(context.Background(), "x"), convey.ShouldEqual, boom)
	})
}
