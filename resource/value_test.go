package resource

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/internal/testutil"
	"github.com/erraggy/resmerge/reserrors"
)

const xliffURI = "urn:oasis:names:tc:xliff:document:1.2"

func TestParseValuesDocument(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<resources xmlns:xliff="` + xliffURI + `">
    <eat-comment/>
    <string name="app_name">Demo</string>
    <string name="welcome">Hi <xliff:g id="user">%s</xliff:g></string>
    <color name="accent">#ff0000</color>
    <item name="main_alias" type="layout">@layout/main</item>
    <string-array name="planets">
        <item>Mercury</item>
    </string-array>
    <declare-styleable name="Widget">
        <attr name="size" format="dimension"/>
    </declare-styleable>
    <item name="empty_id" type="id"/>
</resources>
`
	values, err := ParseValuesDocument("values.xml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, values, 7)

	assert.Equal(t, "app_name", values[0].Name())
	assert.Equal(t, ResourceType("string"), values[0].Type())
	assert.Equal(t, "Demo", values[0].Inner)
	assert.Nil(t, values[0].Namespaces)

	assert.Equal(t, map[string]string{"xliff": xliffURI}, values[1].Namespaces)
	assert.Contains(t, values[1].Inner, "<xliff:g")

	assert.Equal(t, ResourceType("color"), values[2].Type())
	assert.Equal(t, ResourceType("layout"), values[3].Type())
	assert.Equal(t, ResourceType("array"), values[4].Type())
	assert.Equal(t, ResourceType("declare-styleable"), values[5].Type())

	assert.Equal(t, ResourceType("id"), values[6].Type())
	assert.Equal(t, `<item name="empty_id" type="id"/>`, values[6].XML())
}

func TestParseValuesDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "<resources><string name=\"a\">"},
		{"wrong root", "<layout><string name=\"a\">A</string></layout>"},
		{"missing name", testutil.Values(`<string>A</string>`)},
		{"item without type", testutil.Values(`<item name="a">A</item>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseValuesDocument("bad.xml", []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, reserrors.ErrParse))

			var perr *reserrors.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "bad.xml", perr.Path)
		})
	}
}

func TestValueXMLRoundTrip(t *testing.T) {
	doc := `<resources xmlns:tools="http://schemas.android.com/tools">` +
		`<string name="q" tools:ignore="MissingTranslation">a &amp; b</string></resources>`
	values, err := ParseValuesDocument("v.xml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, values, 1)

	v := values[0]
	assert.Equal(t, "MissingTranslation", v.Attr("tools:ignore"))
	assert.Equal(t, `<string name="q" tools:ignore="MissingTranslation">a &amp; b</string>`, v.XML())

	restored, err := ParseValue(v.XML(), v.Namespaces)
	require.NoError(t, err)
	assert.True(t, v.Equal(restored))
}

func TestValueEqual(t *testing.T) {
	a, err := ParseValue(`<string name="a">A</string>`, nil)
	require.NoError(t, err)
	b, err := ParseValue(`<string name="a">A</string>`, nil)
	require.NoError(t, err)
	c, err := ParseValue(`<string name="a">B</string>`, nil)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*Value)(nil).Equal(nil))
}

func TestWriteValuesDocument(t *testing.T) {
	greeting, err := ParseValue(`<string name="hello">Hi <xliff:g id="n">%s</xliff:g></string>`,
		map[string]string{"xliff": xliffURI})
	require.NoError(t, err)
	color, err := ParseValue(`<color name="accent">#fff</color>`, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteValuesDocument(&buf, []*Value{color, greeting}))

	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<resources xmlns:xliff="` + xliffURI + `">` + "\n" +
		`    <color name="accent">#fff</color>` + "\n" +
		`    <string name="hello">Hi <xliff:g id="n">%s</xliff:g></string>` + "\n" +
		"</resources>\n"
	assert.Equal(t, want, buf.String())

	// the written document parses back to the same entries
	values, err := ParseValuesDocument("out.xml", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.True(t, color.Equal(values[0]))
	assert.True(t, greeting.Equal(values[1]))
}

func TestWriteValuesDocumentConflictingPrefix(t *testing.T) {
	one, err := ParseValue(`<string name="one" x:k="1">One</string>`, map[string]string{"x": "urn:a"})
	require.NoError(t, err)
	two, err := ParseValue(`<string name="two" x:k="2">Two</string>`, map[string]string{"x": "urn:b"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteValuesDocument(&buf, []*Value{one, two}))

	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<resources xmlns:x="urn:a">` + "\n" +
		`    <string name="one" x:k="1">One</string>` + "\n" +
		`    <string xmlns:x="urn:b" name="two" x:k="2">Two</string>` + "\n" +
		"</resources>\n"
	assert.Equal(t, want, buf.String())

	values, err := ParseValuesDocument("out.xml", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, map[string]string{"x": "urn:a"}, values[0].Namespaces)
	assert.Equal(t, map[string]string{"x": "urn:b"}, values[1].Namespaces)
	assert.True(t, one.Equal(values[0]))
	assert.True(t, two.Equal(values[1]))
}

func TestParseValuesDocumentEntryNamespace(t *testing.T) {
	doc := `<resources xmlns:x="urn:a">` +
		`<string xmlns:x="urn:b" name="local" x:k="v">L</string>` +
		`<string name="inherited" x:k="w">I</string></resources>`
	values, err := ParseValuesDocument("v.xml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, values, 2)

	assert.Equal(t, `<string name="local" x:k="v">L</string>`, values[0].XML())
	assert.Equal(t, map[string]string{"x": "urn:b"}, values[0].Namespaces)
	assert.Equal(t, map[string]string{"x": "urn:a"}, values[1].Namespaces)
}
