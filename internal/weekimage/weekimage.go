package weekimage

import (
	"bytes"
	"image/color"
	"strconv"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/timeutil"
)

// Canvas dimensions and paddings.
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 120
	dayPaddingX      = 8
	minSlotHeight    = 8.0
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	visibleDays      = 6 // Monday through Saturday
)

// Working hours shown on the grid.
const (
	gridStartHour = timeutil.DayStartMin / 60
	gridEndHour   = timeutil.DayEndMin / 60
	gridHours     = gridEndHour - gridStartHour
)

// Color scheme.
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 125}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}

	slotDefaultColor = color.RGBA{133, 193, 85, 220}
	slotBookedColor  = color.RGBA{243, 156, 18, 255}
	slotTextColor    = color.RGBA{20, 24, 28, 230}
	slotShadowColor  = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

type weekBounds struct {
	start time.Time
	end   time.Time
}

// Render draws the professional's week as a PNG. Slots outside the
// Monday of weekDate through Saturday are not drawn. Patient names come
// from the active bookings riding on the slots.
func Render(weekDate time.Time, slots []*model.Slot, bookings []*model.Booking) ([]byte, error) {
	week := normalizeToWeekBounds(weekDate)
	today := normalizeToDay(time.Now())
	highlightToday := isTodayInWeek(today, week)

	slotsByDay := groupSlotsByDay(slots)
	patientBySlot := activePatientNames(bookings)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / visibleDays
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(gridHours)

	drawHeader(dc, week)
	drawHourLabels(dc, cellHeight)

	currentDate := week.start
	for dayIndex := 0; dayIndex < visibleDays; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		isToday := highlightToday && isSameDay(currentDate, today)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, isToday)
		drawDayHeader(dc, currentDate, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, cellHeight)

		dateKey := currentDate.Format(timeutil.DateLayout)
		for _, slot := range slotsByDay[dateKey] {
			drawSlot(dc, slot, patientBySlot[slot.ID], x, dayWidth, cellHeight)
		}

		currentDate = currentDate.AddDate(0, 0, 1)
	}

	drawLegend(dc, dayWidth)

	return encodeImage(dc)
}

// normalizeToWeekBounds snaps a date to its Monday..Saturday window.
func normalizeToWeekBounds(date time.Time) weekBounds {
	normalized := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	offset := (int(normalized.Weekday()) + 6) % 7 // Monday = 0
	start := normalized.AddDate(0, 0, -offset)
	return weekBounds{start: start, end: start.AddDate(0, 0, visibleDays-1)}
}

func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isTodayInWeek(today time.Time, week weekBounds) bool {
	return !today.Before(week.start) && !today.After(week.end)
}

func groupSlotsByDay(slots []*model.Slot) map[string][]*model.Slot {
	slotsByDay := make(map[string][]*model.Slot)
	for _, slot := range slots {
		slotsByDay[slot.Date] = append(slotsByDay[slot.Date], slot)
	}
	return slotsByDay
}

// activePatientNames maps slot id to the patient holding it.
func activePatientNames(bookings []*model.Booking) map[string]string {
	names := make(map[string]string)
	for _, b := range bookings {
		if b.Active() && b.PatientName != "" {
			names[b.SlotID] = b.PatientName
		}
	}
	return names
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

func drawHeader(dc *gg.Context, week weekBounds) {
	startMonth := week.start.Month()
	endMonth := week.end.Month()

	var title string
	if startMonth == endMonth {
		title = monthName(startMonth)
	} else {
		title = monthName(startMonth) + " - " + monthName(endMonth)
	}

	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2, float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for hIdx := 0; hIdx <= gridHours; hIdx++ {
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		label := formatTwoDigits(gridStartHour+hIdx) + ":00"
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func isSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	if isToday {
		dc.SetColor(todayBgColor)
	} else if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -2)
	dc.DrawStringAnchored(weekdayShort(date.Weekday()), x+float64(dayWidth)/2, y, 0.5, -0.5)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for hIdx := 0; hIdx <= gridHours; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawSlot(dc *gg.Context, slot *model.Slot, patientName string, x float64, dayWidth int, cellHeight float64) {
	startHour := float64(timeutil.ToMinutes(slot.StartTime)) / 60.0
	endHour := float64(timeutil.ToMinutes(slot.EndTime)) / 60.0

	slotY := float64(headerHeight) + (startHour-float64(gridStartHour))*cellHeight
	slotHeight := (endHour - startHour) * cellHeight
	if slotHeight < minSlotHeight {
		slotHeight = minSlotHeight
	}

	fillColor := parseHexColor(slot.Color, slotDefaultColor)
	if patientName != "" {
		fillColor = slotBookedColor
	}
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)

	// Shadow.
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	// Slot body.
	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	// Border.
	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Stroke()

	dc.SetColor(slotTextColor)
	txtX := x + float64(dayPaddingX) + 8
	txtY := slotY + 8 + 10
	dc.DrawStringAnchored(slot.StartTime, txtX, txtY, 0, 0)

	label := slot.DisplayLabel(patientName)
	if label != "" && slotHeight > 25 {
		maxLen := 20
		if len(label) > maxLen {
			label = label[:maxLen-3] + "..."
		}
		dc.DrawStringAnchored(label, txtX, txtY+16, 0, 0)
	}
}

// parseHexColor reads a "#rrggbb" value; malformed colors fall back.
func parseHexColor(hex string, fallback color.RGBA) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return fallback
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth + visibleDays*dayWidth + 10)
	legendY := float64(imageHeight) - 100.0

	legendItems := []struct {
		Label string
		Clr   color.Color
	}{
		{"Disponible", slotDefaultColor},
		{"Reservado", slotBookedColor},
	}

	boxW := 20.0
	boxH := 14.0
	liY := legendY + 22

	for _, item := range legendItems {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.Label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTwoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func weekdayShort(weekday time.Weekday) string {
	weekdays := map[time.Weekday]string{
		time.Monday:    "Lun",
		time.Tuesday:   "Mar",
		time.Wednesday: "Mié",
		time.Thursday:  "Jue",
		time.Friday:    "Vie",
		time.Saturday:  "Sáb",
		time.Sunday:    "Dom",
	}
	return weekdays[weekday]
}

func monthName(month time.Month) string {
	months := map[time.Month]string{
		time.January:   "Enero",
		time.February:  "Febrero",
		time.March:     "Marzo",
		time.April:     "Abril",
		time.May:       "Mayo",
		time.June:      "Junio",
		time.July:      "Julio",
		time.August:    "Agosto",
		time.September: "Septiembre",
		time.October:   "Octubre",
		time.November:  "Noviembre",
		time.December:  "Diciembre",
	}
	return months[month]
}
