package diag

import "testing"

var contextTests = []struct {
	Name    string
	Context *Context
	Indent  string

	WantShow        string
	WantShowCompact string
}{
	{
		Name:    "single-line culprit",
		Context: contextInParen("[test]", "var x = (bad);"),
		Indent:  "_",

		WantShow: lines(
			"[test]:1:9:",
			"_var x = <(bad)>;",
		),
		WantShowCompact: "[test]:1:9: var x = <(bad)>;",
	},
	{
		Name:    "multi-line culprit",
		Context: contextInParen("[test]", "x = (bad\nbad)\nmore"),
		Indent:  "_",

		WantShow: lines(
			"[test]:1:5:",
			"_x = <(bad>",
			"_<bad)>",
		),
		WantShowCompact: lines(
			"[test]:1:5: x = <(bad>",
			"_            <bad)>",
		),
	},
	{
		Name: "trailing newline in culprit is removed",
		//                             012345678 9
		Context: NewContext("[test]", "var bad\n", Ranging{4, 8}),
		Indent:  "_",

		WantShow: lines(
			"[test]:1:5:",
			"_var <bad>",
		),
		WantShowCompact: "[test]:1:5: var <bad>",
	},
	{
		Name: "empty culprit",
		//                             0123456
		Context: NewContext("[test]", "break x", Ranging{6, 6}),

		WantShow: lines(
			"[test]:1:7:",
			"break <^>x",
		),
		WantShowCompact: "[test]:1:7: break <^>x",
	},
	{
		Name:            "unknown culprit range",
		Context:         NewContext("[test]", "loop", Ranging{-1, -1}),
		WantShow:        "[test], unknown position",
		WantShowCompact: "[test], unknown position",
	},
	{
		Name:            "invalid culprit range",
		Context:         NewContext("[test]", "loop", Ranging{2, 1}),
		WantShow:        "[test], invalid position 2-1",
		WantShowCompact: "[test], invalid position 2-1",
	},
}

func TestContext(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	for _, test := range contextTests {
		t.Run(test.Name, func(t *testing.T) {
			gotShow := test.Context.Show(test.Indent)
			if gotShow != test.WantShow {
				t.Errorf("Show() -> %q, want %q", gotShow, test.WantShow)
			}
			gotShowCompact := test.Context.ShowCompact(test.Indent)
			if gotShowCompact != test.WantShowCompact {
				t.Errorf("ShowCompact() -> %q, want %q",
					gotShowCompact, test.WantShowCompact)
			}
		})
	}
}
