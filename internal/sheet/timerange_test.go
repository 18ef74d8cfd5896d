package sheet_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"practicebot/internal/sheet"

	"github.com/smartystreets/goconvey/convey"
)

func TestParseTimeRange(t *testing.T) {
	convey.Convey("Given short afternoon forms with a start of 0..7", t, func() {
		for s := 0; s <= 7; s++ {
			e := s + 3
			start, end, err := sheet.ParseTimeRange(fmt.Sprintf("%d-%d", s, e))
			convey.So(err, convey.ShouldBeNil)
			convey.So(start, convey.ShouldEqual, s+12)
			convey.So(end, convey.ShouldEqual, e+12)
		}
	})

	convey.Convey("Given 24-hour forms with a start of 8..23", t, func() {
		for s := 8; s <= 23; s++ {
			start, end, err := sheet.ParseTimeRange(fmt.Sprintf("%d-%d", s, 21))
			convey.So(err, convey.ShouldBeNil)
			convey.So(start, convey.ShouldEqual, s)
			convey.So(end, convey.ShouldEqual, 21)
		}
	})

	convey.Convey("Given the two spellings of the same afternoon slot", t, func() {
		s1, e1, err1 := sheet.ParseTimeRange("4-9")
		s2, e2, err2 := sheet.ParseTimeRange("16-21")

		convey.Convey("Then both resolve to 16-21", func() {
			convey.So(err1, convey.ShouldBeNil)
			convey.So(err2, convey.ShouldBeNil)
			convey.So([]int{s1, e1}, convey.ShouldResemble, []int{16, 21})
			convey.So([]int{s2, e2}, convey.ShouldResemble, []int{16, 21})
		})
	})

	convey.Convey("Given the 7/8 boundary", t, func() {
		s, e, err := sheet.ParseTimeRange("7-9")
		convey.So(err, convey.ShouldBeNil)
		convey.So([]int{s, e}, convey.ShouldResemble, []int{19, 21})

		s, e, err = sheet.ParseTimeRange("8-10")
		convey.So(err, convey.ShouldBeNil)
		convey.So([]int{s, e}, convey.ShouldResemble, []int{8, 10})
	})

	convey.Convey("Given surrounding whitespace", t, func() {
		s, e, err := sheet.ParseTimeRange(" 9 - 12 ")
		convey.So(err, convey.ShouldBeNil)
		convey.So([]int{s, e}, convey.ShouldResemble, []int{9, 12})
	})

	convey.Convey("Given malformed text", t, func() {
		for _, in := range []string{"", "16", "16-", "-9", "4--9", "1-2-3", "a-b", "16:00-21:00", "+4-9", "24-25", "99-100", "４-９"} {
			_, _, err := sheet.ParseTimeRange(in)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, sheet.ErrInvalidTimeRange), convey.ShouldBeTrue)
			convey.So(errors.Is(err, sheet.ErrMalformedInput), convey.ShouldBeTrue)
		}
	})
}

func TestParseDateString(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	convey.Convey("Given month-day text", t, func() {
		got, err := sheet.ParseDateString("10月18日", 2023, jst)

		convey.Convey("Then it is that day of the given year at midnight", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, time.Date(2023, 10, 18, 0, 0, 0, 0, jst))
		})
	})

	convey.Convey("Given month-day text with a written year", t, func() {
		got, err := sheet.ParseDateString("2019年1月5日(土)", 2023, jst)

		convey.Convey("Then the processing year wins", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, time.Date(2023, 1, 5, 0, 0, 0, 0, jst))
		})
	})

	convey.Convey("Given month-day text out of range", t, func() {
		for _, in := range []string{"13月1日", "0月10日", "10月0日", "10月32日", "2月30日", "11月31日"} {
			_, err := sheet.ParseDateString(in, 2023, jst)
			convey.So(errors.Is(err, sheet.ErrInvalidDate), convey.ShouldBeTrue)
		}
	})

	convey.Convey("Given other calendar text", t, func() {
		for _, in := range []string{"2023/10/18", "2023-10-18", "10/18/2023", "Oct 18, 2023"} {
			got, err := sheet.ParseDateString(in, 2000, jst)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, time.Date(2023, 10, 18, 0, 0, 0, 0, jst))
		}
	})

	convey.Convey("Given text that is not a date", t, func() {
		for _, in := range []string{"水", "未定", "next week"} {
			_, err := sheet.ParseDateString(in, 2023, jst)
			convey.So(errors.Is(err, sheet.ErrInvalidDate), convey.ShouldBeTrue)
			convey.So(errors.Is(err, sheet.ErrMalformedInput), convey.ShouldBeTrue)
		}
	})
}
