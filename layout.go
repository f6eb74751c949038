// Share-preview layout catalog.
//
// One LayoutSpec per visual variant, pure data: canvas geometry, background
// descriptor, an ordered list of positioned content blocks, and default copy.
// Block order is paint order. Every text-bearing block names exactly one
// input field and carries a literal fallback, so content resolution stays a
// pure function of the merged input (see render.go).

package main

import "fmt"

// Variant selects one of the fixed set of visual templates. The set is
// closed and known at build time.
type Variant string

const (
	VariantInvite  Variant = "invite"
	VariantRematch Variant = "rematch"
	VariantDaily   Variant = "daily"
	VariantResult  Variant = "result"
	VariantProfile Variant = "profile"
	VariantApp     Variant = "app"
	VariantGeneric Variant = "generic"
)

// Field names one OgInput field as a content source for a block.
type Field string

const (
	FieldNone                Field = ""
	FieldBrandName           Field = "brandName"
	FieldSubtitle            Field = "subtitle"
	FieldCTA                 Field = "cta"
	FieldOpponentName        Field = "opponentName"
	FieldOpponentAvatarURL   Field = "opponentAvatarUrl"
	FieldChallengerName      Field = "challengerName"
	FieldChallengerAvatarURL Field = "challengerAvatarUrl"
	FieldQuestion            Field = "question"
	FieldCategory            Field = "category"
	FieldDifficulty          Field = "difficulty"
	FieldDayLabel            Field = "dayLabel"
	FieldUsername            Field = "username"
	FieldAvatarURL           Field = "avatarUrl"
	FieldStatPrimaryLabel    Field = "statPrimaryLabel"
	FieldStatPrimaryValue    Field = "statPrimaryValue"
	FieldStatSecondaryLabel  Field = "statSecondaryLabel"
	FieldStatSecondaryValue  Field = "statSecondaryValue"
	FieldHeadline            Field = "headline"
	FieldSubhead             Field = "subhead"
)

// TextStyle is the typographic contract for one text block. Zero values for
// Opacity, LineHeight and MaxLines mean 1, 1.1 and 1 respectively.
type TextStyle struct {
	Size       float64
	Weight     int // one of 400, 500, 600, 700, 800, 900
	Opacity    float64
	LineHeight float64
	Tracking   float64
	MaxLines   int
}

type LogoShape string

const (
	LogoSquare LogoShape = "square"
	LogoCircle LogoShape = "circle"
)

// LayoutBlock is the closed sum over block kinds. Each kind carries its own
// geometry and source-field declarations.
type LayoutBlock interface {
	blockKind() string
}

type LogoBlock struct {
	X, Y, Size float64
	Shape      LogoShape
}

type TitleBlock struct {
	X, Y, W  float64
	Style    TextStyle
	From     Field
	Fallback string
}

type HeadlineBlock struct {
	X, Y, W  float64
	Style    TextStyle
	From     Field
	Fallback string
}

type SubtitleBlock struct {
	X, Y, W  float64
	Style    TextStyle
	From     Field
	Fallback string
}

type PillBlock struct {
	X, Y      float64
	LabelFrom Field
	ValueFrom Field // FieldDifficulty or FieldNone
}

type AvatarsBlock struct {
	X, Y, Size, Gap float64
	LeftFrom        Field
	RightFrom       Field
	LeftLabelFrom   Field
	RightLabelFrom  Field
}

// MatchupBlock is the head-to-head result composition: two avatar + label +
// score + time groups with a derived winner indication. Scores and times are
// pre-formatted strings; raw numerics never reach the renderer.
type MatchupBlock struct {
	X, Y, W float64
}

type StatItem struct {
	LabelFrom Field
	ValueFrom Field
}

type StatsBlock struct {
	X, Y, W float64
	Items   []StatItem
}

func (LogoBlock) blockKind() string     { return "logo" }
func (TitleBlock) blockKind() string    { return "title" }
func (HeadlineBlock) blockKind() string { return "headline" }
func (SubtitleBlock) blockKind() string { return "subtitle" }
func (PillBlock) blockKind() string     { return "pill" }
func (AvatarsBlock) blockKind() string  { return "avatars" }
func (MatchupBlock) blockKind() string  { return "matchup" }
func (StatsBlock) blockKind() string    { return "stats" }

type Background struct {
	Color string // base fill, hex
	Dim   float64
	Blur  float64
}

type LayoutSpec struct {
	Width, Height int
	Padding       float64
	Background    Background
	FontFamily    string
	Blocks        []LayoutBlock
	Defaults      map[Field]string
}

// Canvas and shared style constants. Social preview images are fixed at
// 1200x630 regardless of variant.
const (
	canvasWidth  = 1200
	canvasHeight = 630
	safePadding  = 64

	logoCornerRadius = 24
	avatarRingWidth  = 4

	colorBG      = "#0b0b0f"
	colorText    = "#ffffff"
	colorCard    = "#17171c"
	colorStroke  = "#3c3c44"
	colorAccent  = "#f5b942"
	textEllipsis = "…"
	maxStars     = 5
)

var layouts = map[Variant]LayoutSpec{
	VariantInvite: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldSubtitle:  "You’ve been challenged",
			FieldCTA:       "Tap to open this challenge in the app",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 96, Shape: LogoSquare},
			TitleBlock{X: 176, Y: 78, W: 960, From: FieldBrandName, Fallback: "Classic Car IQ",
				Style: TextStyle{Size: 30, Weight: 700, Opacity: 0.92, MaxLines: 1}},
			HeadlineBlock{X: 64, Y: 190, W: 1072, From: FieldSubtitle, Fallback: "You’ve been challenged",
				Style: TextStyle{Size: 72, Weight: 900, LineHeight: 1.05, MaxLines: 2}},
			SubtitleBlock{X: 64, Y: 360, W: 980, From: FieldCTA, Fallback: "Tap to open this challenge in the app",
				Style: TextStyle{Size: 32, Weight: 500, Opacity: 0.85, LineHeight: 1.25, MaxLines: 2}},
			AvatarsBlock{X: 64, Y: 470, Size: 112, Gap: 18,
				LeftFrom: FieldChallengerAvatarURL, RightFrom: FieldOpponentAvatarURL,
				LeftLabelFrom: FieldChallengerName, RightLabelFrom: FieldOpponentName},
		},
	},

	VariantRematch: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldSubtitle:  "Rematch request",
			FieldCTA:       "Tap to run it back",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 96, Shape: LogoSquare},
			TitleBlock{X: 176, Y: 78, W: 960, From: FieldBrandName, Fallback: "Classic Car IQ",
				Style: TextStyle{Size: 30, Weight: 700, Opacity: 0.92, MaxLines: 1}},
			HeadlineBlock{X: 64, Y: 190, W: 1072, From: FieldSubtitle, Fallback: "Rematch request",
				Style: TextStyle{Size: 72, Weight: 900, LineHeight: 1.05, MaxLines: 2}},
			SubtitleBlock{X: 64, Y: 360, W: 980, From: FieldCTA, Fallback: "Tap to run it back",
				Style: TextStyle{Size: 32, Weight: 500, Opacity: 0.85, LineHeight: 1.25, MaxLines: 2}},
			AvatarsBlock{X: 64, Y: 470, Size: 112, Gap: 18,
				LeftFrom: FieldChallengerAvatarURL, RightFrom: FieldOpponentAvatarURL,
				LeftLabelFrom: FieldChallengerName, RightLabelFrom: FieldOpponentName},
		},
	},

	VariantDaily: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldDayLabel:  "Daily IQ",
			FieldCTA:       "Do you know it?",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 96, Shape: LogoSquare},
			TitleBlock{X: 176, Y: 78, W: 960, From: FieldDayLabel, Fallback: "Daily IQ",
				Style: TextStyle{Size: 30, Weight: 800, Opacity: 0.92, MaxLines: 1}},
			PillBlock{X: 64, Y: 140, LabelFrom: FieldCategory, ValueFrom: FieldDifficulty},
			HeadlineBlock{X: 64, Y: 200, W: 1072, From: FieldQuestion, Fallback: "Today’s question",
				Style: TextStyle{Size: 60, Weight: 900, LineHeight: 1.08, MaxLines: 4}},
			SubtitleBlock{X: 64, Y: 520, W: 980, From: FieldCTA, Fallback: "Do you know it?",
				Style: TextStyle{Size: 30, Weight: 600, Opacity: 0.85, MaxLines: 1}},
		},
	},

	VariantResult: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldSubtitle:  "Challenge complete",
			FieldCTA:       "See the full breakdown in the app",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 96, Shape: LogoSquare},
			TitleBlock{X: 176, Y: 78, W: 960, From: FieldBrandName, Fallback: "Classic Car IQ",
				Style: TextStyle{Size: 30, Weight: 700, Opacity: 0.92, MaxLines: 1}},
			HeadlineBlock{X: 64, Y: 180, W: 1072, From: FieldSubtitle, Fallback: "Challenge complete",
				Style: TextStyle{Size: 64, Weight: 900, LineHeight: 1.05, MaxLines: 1}},
			MatchupBlock{X: 64, Y: 290, W: 1072},
			SubtitleBlock{X: 64, Y: 560, W: 980, From: FieldCTA, Fallback: "See the full breakdown in the app",
				Style: TextStyle{Size: 28, Weight: 600, Opacity: 0.85, MaxLines: 1}},
		},
	},

	VariantProfile: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldSubtitle:  "Player Profile",
			FieldCTA:       "View stats in the app",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 96, Shape: LogoSquare},
			TitleBlock{X: 176, Y: 78, W: 960, From: FieldBrandName, Fallback: "Classic Car IQ",
				Style: TextStyle{Size: 30, Weight: 700, Opacity: 0.92, MaxLines: 1}},
			AvatarsBlock{X: 64, Y: 170, Size: 140,
				LeftFrom: FieldAvatarURL, RightFrom: FieldOpponentAvatarURL,
				LeftLabelFrom: FieldUsername},
			HeadlineBlock{X: 240, Y: 205, W: 880, From: FieldHeadline, Fallback: "Player Profile",
				Style: TextStyle{Size: 64, Weight: 900, LineHeight: 1.05, MaxLines: 1}},
			SubtitleBlock{X: 240, Y: 285, W: 880, From: FieldCTA, Fallback: "View stats in the app",
				Style: TextStyle{Size: 30, Weight: 600, Opacity: 0.85, MaxLines: 1}},
			StatsBlock{X: 64, Y: 390, W: 1072, Items: []StatItem{
				{LabelFrom: FieldStatPrimaryLabel, ValueFrom: FieldStatPrimaryValue},
				{LabelFrom: FieldStatSecondaryLabel, ValueFrom: FieldStatSecondaryValue},
			}},
		},
	},

	VariantApp: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldHeadline:  "Classic Car IQ",
			FieldSubhead:   "Daily questions • Head-to-head • Streaks",
			FieldCTA:       "Play now",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 120, Shape: LogoSquare},
			HeadlineBlock{X: 64, Y: 210, W: 1072, From: FieldHeadline, Fallback: "Classic Car IQ",
				Style: TextStyle{Size: 92, Weight: 900, LineHeight: 1.0, MaxLines: 1}},
			SubtitleBlock{X: 64, Y: 320, W: 980, From: FieldSubhead, Fallback: "Daily questions • Head-to-head • Streaks",
				Style: TextStyle{Size: 34, Weight: 600, Opacity: 0.85, LineHeight: 1.2, MaxLines: 2}},
			SubtitleBlock{X: 64, Y: 520, W: 980, From: FieldCTA, Fallback: "Play now",
				Style: TextStyle{Size: 30, Weight: 700, Opacity: 0.9, MaxLines: 1}},
		},
	},

	VariantGeneric: {
		Width: canvasWidth, Height: canvasHeight, Padding: safePadding,
		FontFamily: "Latin Modern Sans",
		Background: Background{Color: colorBG},
		Defaults: map[Field]string{
			FieldBrandName: "Classic Car IQ",
			FieldHeadline:  "Classic Car IQ",
			FieldSubhead:   "Classic car trivia — built for daily play",
			FieldCTA:       "Open in app",
		},
		Blocks: []LayoutBlock{
			LogoBlock{X: 64, Y: 64, Size: 120, Shape: LogoSquare},
			HeadlineBlock{X: 64, Y: 220, W: 1072, From: FieldHeadline, Fallback: "Classic Car IQ",
				Style: TextStyle{Size: 88, Weight: 900, LineHeight: 1.0, MaxLines: 1}},
			SubtitleBlock{X: 64, Y: 330, W: 980, From: FieldSubhead, Fallback: "Classic car trivia — built for daily play",
				Style: TextStyle{Size: 34, Weight: 600, Opacity: 0.85, LineHeight: 1.2, MaxLines: 2}},
			SubtitleBlock{X: 64, Y: 520, W: 980, From: FieldCTA, Fallback: "Open in app",
				Style: TextStyle{Size: 30, Weight: 700, Opacity: 0.9, MaxLines: 1}},
		},
	},
}

// getLayout returns the layout for a variant. The variant set is closed, so
// an unknown variant is a programming error and panics.
func getLayout(variant Variant) LayoutSpec {
	spec, ok := layouts[variant]
	if !ok {
		panic(fmt.Sprintf("unknown layout variant %q", variant))
	}
	return spec
}
