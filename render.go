// Scene renderer: (variant, input) -> ordered, fully resolved primitives.
//
// Resolution is three-tier and auditable: caller input wins over variant
// defaults, which win over a block's own fallback literal. Blank and
// all-whitespace strings count as absent at every tier. The function is pure;
// the same input always produces a deep-equal Scene.

package main

import (
	"image"
	"strings"
)

// OgInput is the runtime record merged against a variant's defaults. All
// fields are optional; blank means absent. Avatar and logo images are
// pre-fetched by the route handlers so rendering itself never does IO.
type OgInput struct {
	BrandName string
	Subtitle  string
	CTA       string

	LogoSize float64

	BackgroundBlur float64
	BackgroundDim  *float64

	OpponentName        string
	OpponentAvatarURL   string
	ChallengerName      string
	ChallengerAvatarURL string

	Question   string
	Category   string
	Difficulty int
	DayLabel   string

	Username  string
	AvatarURL string

	StatPrimaryLabel   string
	StatPrimaryValue   string
	StatSecondaryLabel string
	StatSecondaryValue string

	Headline string
	Subhead  string

	// Matchup fields, pre-formatted upstream ("9/10", "26s").
	ChallengerScore string
	OpponentScore   string
	ChallengerTime  string
	OpponentTime    string
	Winner          string // "challenger", "opponent", or blank for a draw

	// Inlined images keyed to the corresponding URL fields.
	Logo             image.Image
	ChallengerAvatar image.Image
	OpponentAvatar   image.Image
	Avatar           image.Image
	BackgroundImage  image.Image
}

func (in *OgInput) field(f Field) string {
	switch f {
	case FieldBrandName:
		return in.BrandName
	case FieldSubtitle:
		return in.Subtitle
	case FieldCTA:
		return in.CTA
	case FieldOpponentName:
		return in.OpponentName
	case FieldOpponentAvatarURL:
		return in.OpponentAvatarURL
	case FieldChallengerName:
		return in.ChallengerName
	case FieldChallengerAvatarURL:
		return in.ChallengerAvatarURL
	case FieldQuestion:
		return in.Question
	case FieldCategory:
		return in.Category
	case FieldDayLabel:
		return in.DayLabel
	case FieldUsername:
		return in.Username
	case FieldAvatarURL:
		return in.AvatarURL
	case FieldStatPrimaryLabel:
		return in.StatPrimaryLabel
	case FieldStatPrimaryValue:
		return in.StatPrimaryValue
	case FieldStatSecondaryLabel:
		return in.StatSecondaryLabel
	case FieldStatSecondaryValue:
		return in.StatSecondaryValue
	case FieldHeadline:
		return in.Headline
	case FieldSubhead:
		return in.Subhead
	default:
		return ""
	}
}

// avatarImage maps an avatar URL field to its pre-fetched image, if any.
func (in *OgInput) avatarImage(f Field) image.Image {
	switch f {
	case FieldChallengerAvatarURL:
		return in.ChallengerAvatar
	case FieldOpponentAvatarURL:
		return in.OpponentAvatar
	case FieldAvatarURL:
		return in.Avatar
	default:
		return nil
	}
}

// Scene is the renderer output: background plus positioned primitives in
// paint order. Recomputed per request, never persisted.
type Scene struct {
	Width, Height int
	Background    SceneBackground
	Items         []SceneItem
}

type SceneBackground struct {
	Color string
	Dim   float64
	Blur  float64
	Image image.Image
}

type SceneItem interface {
	sceneItem() string
}

type SceneLogo struct {
	X, Y, Size float64
	Radius     float64
	Image      image.Image
}

type SceneText struct {
	X, Y, W float64
	Text    string
	Style   TextStyle
}

type ScenePill struct {
	X, Y  float64
	Label string
	Stars int
}

type SceneAvatar struct {
	X, Y, Size float64
	Image      image.Image
	Monogram   string
	Label      string
}

type SceneStatCard struct {
	X, Y, W, H float64
	Label      string
	Value      string
}

type MatchupSide struct {
	Name     string
	Monogram string
	Image    image.Image
	Score    string
	Time     string
	Winner   bool
}

type SceneMatchup struct {
	X, Y, W    float64
	Challenger MatchupSide
	Opponent   MatchupSide
}

func (SceneLogo) sceneItem() string     { return "logo" }
func (SceneText) sceneItem() string     { return "text" }
func (ScenePill) sceneItem() string     { return "pill" }
func (SceneAvatar) sceneItem() string   { return "avatar" }
func (SceneStatCard) sceneItem() string { return "stat" }
func (SceneMatchup) sceneItem() string  { return "matchup" }

func clampUnit(n float64) float64 {
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// initials derives a monogram from a display name: first letter of the first
// and last name tokens, upper-cased, or "?" when there is nothing to use.
func initials(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "?"
	}
	first := []rune(tokens[0])
	mono := strings.ToUpper(string(first[0]))
	if len(tokens) > 1 {
		last := []rune(tokens[len(tokens)-1])
		mono += strings.ToUpper(string(last[0]))
	}
	return mono
}

// resolve applies the three-tier precedence for one field: caller input,
// then variant defaults, then the block fallback literal.
func resolve(in *OgInput, defaults map[Field]string, f Field, fallback string) string {
	if f != FieldNone {
		if v := strings.TrimSpace(in.field(f)); v != "" {
			return v
		}
		if v := strings.TrimSpace(defaults[f]); v != "" {
			return v
		}
	}
	return fallback
}

const statCardGap = 24.0
const statCardHeight = 160.0

// render resolves one variant's layout against the given input and returns
// the scene, ready for rasterization. Blocks with no resolvable content are
// omitted entirely.
func render(variant Variant, in OgInput) Scene {
	spec := getLayout(variant)

	dim := spec.Background.Dim
	if in.BackgroundDim != nil {
		dim = *in.BackgroundDim
	}

	scene := Scene{
		Width:  spec.Width,
		Height: spec.Height,
		Background: SceneBackground{
			Color: spec.Background.Color,
			Dim:   clampUnit(dim),
			Blur:  spec.Background.Blur,
			Image: in.BackgroundImage,
		},
	}
	if in.BackgroundBlur > 0 {
		scene.Background.Blur = in.BackgroundBlur
	}

	for _, block := range spec.Blocks {
		switch b := block.(type) {
		case LogoBlock:
			size := b.Size
			if in.LogoSize > 0 {
				size = in.LogoSize
			}
			radius := float64(logoCornerRadius)
			if b.Shape == LogoCircle {
				radius = size / 2
			}
			scene.Items = append(scene.Items, SceneLogo{
				X: b.X, Y: b.Y, Size: size, Radius: radius, Image: in.Logo,
			})

		case TitleBlock:
			appendText(&scene, b.X, b.Y, b.W, b.Style,
				resolve(&in, spec.Defaults, b.From, b.Fallback))

		case HeadlineBlock:
			appendText(&scene, b.X, b.Y, b.W, b.Style,
				resolve(&in, spec.Defaults, b.From, b.Fallback))

		case SubtitleBlock:
			appendText(&scene, b.X, b.Y, b.W, b.Style,
				resolve(&in, spec.Defaults, b.From, b.Fallback))

		case PillBlock:
			label := resolve(&in, spec.Defaults, b.LabelFrom, "")
			stars := 0
			if b.ValueFrom == FieldDifficulty && in.Difficulty >= 1 {
				stars = in.Difficulty
				if stars > maxStars {
					stars = maxStars
				}
			}
			if label == "" && stars == 0 {
				continue
			}
			scene.Items = append(scene.Items, ScenePill{X: b.X, Y: b.Y, Label: label, Stars: stars})

		case AvatarsBlock:
			left := SceneAvatar{
				X: b.X, Y: b.Y, Size: b.Size,
				Image: in.avatarImage(b.LeftFrom),
				Label: resolve(&in, spec.Defaults, b.LeftLabelFrom, ""),
			}
			if left.Image == nil {
				left.Monogram = initials(left.Label)
			}
			scene.Items = append(scene.Items, left)

			// The right slot only exists when something fills it, which
			// lets single-avatar profile compositions reuse this block.
			rightURL := present(in.field(b.RightFrom))
			rightLabel := resolve(&in, spec.Defaults, b.RightLabelFrom, "")
			if rightURL || rightLabel != "" {
				right := SceneAvatar{
					X: b.X + b.Size + b.Gap, Y: b.Y, Size: b.Size,
					Image: in.avatarImage(b.RightFrom),
					Label: rightLabel,
				}
				if right.Image == nil {
					right.Monogram = initials(right.Label)
				}
				scene.Items = append(scene.Items, right)
			}

		case MatchupBlock:
			challenger := MatchupSide{
				Name:   resolve(&in, spec.Defaults, FieldChallengerName, ""),
				Image:  in.ChallengerAvatar,
				Score:  strings.TrimSpace(in.ChallengerScore),
				Time:   strings.TrimSpace(in.ChallengerTime),
				Winner: in.Winner == "challenger",
			}
			opponent := MatchupSide{
				Name:   resolve(&in, spec.Defaults, FieldOpponentName, ""),
				Image:  in.OpponentAvatar,
				Score:  strings.TrimSpace(in.OpponentScore),
				Time:   strings.TrimSpace(in.OpponentTime),
				Winner: in.Winner == "opponent",
			}
			if challenger == (MatchupSide{}) && opponent == (MatchupSide{}) {
				continue
			}
			if challenger.Image == nil {
				challenger.Monogram = initials(challenger.Name)
			}
			if opponent.Image == nil {
				opponent.Monogram = initials(opponent.Name)
			}
			scene.Items = append(scene.Items, SceneMatchup{
				X: b.X, Y: b.Y, W: b.W,
				Challenger: challenger, Opponent: opponent,
			})

		case StatsBlock:
			cards := make([]SceneStatCard, 0, len(b.Items))
			for _, item := range b.Items {
				label := resolve(&in, spec.Defaults, item.LabelFrom, "")
				value := resolve(&in, spec.Defaults, item.ValueFrom, "")
				if label == "" || value == "" {
					continue
				}
				cards = append(cards, SceneStatCard{Label: label, Value: value})
			}
			if len(cards) == 0 {
				continue
			}
			width := (b.W - statCardGap*float64(len(cards)-1)) / float64(len(cards))
			for i := range cards {
				cards[i].X = b.X + float64(i)*(width+statCardGap)
				cards[i].Y = b.Y
				cards[i].W = width
				cards[i].H = statCardHeight
				scene.Items = append(scene.Items, cards[i])
			}
		}
	}

	return scene
}

func appendText(scene *Scene, x, y, w float64, style TextStyle, text string) {
	if text == "" {
		return
	}
	style.Opacity = normalizeOpacity(style.Opacity)
	scene.Items = append(scene.Items, SceneText{X: x, Y: y, W: w, Text: text, Style: style})
}

func normalizeOpacity(o float64) float64 {
	if o == 0 {
		return 1
	}
	return clampUnit(o)
}
