package freezed

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concatenated = "  String get name; int get age; bool get active;"

func TestFixContent_SplitsInsideBlock(t *testing.T) {
	input := strings.Join([]string{
		"mixin _$Foo",
		concatenated,
		"/// Create a copy of Foo",
	}, "\n")

	res := Default().FixContent(input)

	expected := strings.Join([]string{
		"mixin _$Foo",
		"  String get name;",
		"int get age;",
		"bool get active;",
		"/// Create a copy of Foo",
	}, "\n")
	assert.Equal(t, expected, res.Content)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Splits)
	assert.Equal(t, 1, res.Blocks)
	assert.Empty(t, res.Warnings)
}

func TestFixContent_LeavesLinesOutsideBlock(t *testing.T) {
	input := strings.Join([]string{
		"// coverage:ignore-file",
		concatenated,
		"mixin _$Foo {",
		"  String get a; String get b;",
		"/// docs",
		concatenated,
		"",
	}, "\n")

	res := Default().FixContent(input)
	lines := strings.Split(res.Content, "\n")

	assert.Equal(t, "// coverage:ignore-file", lines[0])
	assert.Equal(t, concatenated, lines[1])
	assert.Equal(t, "mixin _$Foo {", lines[2])
	assert.Equal(t, "  String get a;", lines[3])
	assert.Equal(t, "String get b;", lines[4])
	assert.Equal(t, "/// docs", lines[5])
	assert.Equal(t, concatenated, lines[6], "line after block end must be untouched")
	assert.Equal(t, "", lines[7])
}

func TestFixContent_NoBlockNoChange(t *testing.T) {
	input := concatenated + "\n" + concatenated + "\n"

	res := Default().FixContent(input)

	assert.Equal(t, input, res.Content)
	assert.False(t, res.Changed)
	assert.Zero(t, res.Splits)
	assert.Zero(t, res.Blocks)
}

func TestFixContent_BlockEndMarkers(t *testing.T) {
	tests := []struct {
		name   string
		marker string
	}{
		{name: "doc comment", marker: "/// The name"},
		{name: "includeFromJson annotation", marker: "@JsonKey(includeFromJson: false, includeToJson: false)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Join([]string{"mixin _$Foo {", "String get a; int get b;", tt.marker, "String get c; int get d;"}, "\n")

			res := Default().FixContent(input)
			lines := strings.Split(res.Content, "\n")

			require.Len(t, lines, 5)
			assert.Equal(t, tt.marker, lines[3])
			assert.Equal(t, "String get c; int get d;", lines[4])
		})
	}
}

func TestFixContent_IndentedMarkersDoNotEndBlock(t *testing.T) {
	// Only markers at column zero close a block.
	input := strings.Join([]string{"mixin _$Foo {", "  /// doc", "String get a; int get b;", "///"}, "\n")

	res := Default().FixContent(input)

	assert.Equal(t, strings.Join([]string{"mixin _$Foo {", "  /// doc", "String get a;", "int get b;", "///"}, "\n"), res.Content)
}

func TestFixContent_AllTypeKeywords(t *testing.T) {
	input := "mixin _$All {\n" +
		"  String get s; int get i; bool get b; DateTime get d; Map<String, dynamic> get m; String? get n;\n" +
		"///"

	res := Default().FixContent(input)

	assert.Equal(t, "mixin _$All {\n"+
		"  String get s;\n"+
		"int get i;\n"+
		"bool get b;\n"+
		"DateTime get d;\n"+
		"Map<String, dynamic> get m;\n"+
		"String? get n;\n"+
		"///", res.Content)
	assert.Equal(t, 5, res.Splits)
}

func TestFixContent_JsonKeyAnnotation(t *testing.T) {
	input := "mixin _$User {\n" +
		"  int get id; @JsonKey(name: 'full_name') String get fullName; bool get admin;\n" +
		"///"

	res := Default().FixContent(input)

	assert.Equal(t, "mixin _$User {\n"+
		"  int get id;\n"+
		"@JsonKey(name: 'full_name') String get fullName;\n"+
		"bool get admin;\n"+
		"///", res.Content)
}

func TestFixContent_JsonKeyOnNonStringTypes(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		splits int
	}{
		{
			name:   "annotated DateTime",
			line:   "  int get id; @JsonKey(fromJson: _p) DateTime get d;",
			want:   "  int get id;\n@JsonKey(fromJson: _p) DateTime get d;",
			splits: 1,
		},
		{
			name:   "annotation does not swallow the next declaration",
			line:   "  String get a; @JsonKey(name: 'x') int get y; String get z;",
			want:   "  String get a;\n@JsonKey(name: 'x') int get y;\nString get z;",
			splits: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Default().FixContent("mixin _$Foo {\n" + tt.line + "\n///")
			assert.Equal(t, "mixin _$Foo {\n"+tt.want+"\n///", res.Content)
			assert.Equal(t, tt.splits, res.Splits)
		})
	}
}

func TestFixContent_UnknownTypesLeftAlone(t *testing.T) {
	input := "mixin _$Foo {\n  String get a; List<int> get ids; double get d;\n///"

	res := Default().FixContent(input)

	assert.Equal(t, input, res.Content)
	assert.False(t, res.Changed)
}

func TestFixContent_Idempotent(t *testing.T) {
	input := "part of 'foo.dart';\n\nmixin _$Foo {\n" + concatenated + " DateTime get at;\n/// docs\n}\n"

	first := Default().FixContent(input)
	second := Default().FixContent(first.Content)

	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Content, second.Content)
}

func TestFixContent_PreservesTrailingNewlineAndLineCount(t *testing.T) {
	input := "mixin _$Foo {\nString get a; int get b;\n///\n"

	res := Default().FixContent(input)

	assert.True(t, strings.HasSuffix(res.Content, "///\n"))
	assert.Equal(t, strings.Count(input, "\n")+1, strings.Count(res.Content, "\n"))
}

func TestFixContent_CRLF(t *testing.T) {
	input := "mixin _$Foo {\r\nString get a; int get b;\r\n///\r\n"

	res := Default().FixContent(input)

	assert.Equal(t, "mixin _$Foo {\r\nString get a;\r\nint get b;\r\n///\r\n", res.Content)
}

func TestFixContent_Warnings(t *testing.T) {
	t.Run("unterminated", func(t *testing.T) {
		res := Default().FixContent("x\nmixin _$Foo {\nString get a;\n}\n")
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarnUnterminated, res.Warnings[0].Kind)
		assert.Equal(t, 2, res.Warnings[0].Line)
	})

	t.Run("reopened", func(t *testing.T) {
		res := Default().FixContent("mixin _$A {\nString get a;\nmixin _$B {\nString get b;\n///\n")
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarnReopened, res.Warnings[0].Kind)
		assert.Equal(t, 3, res.Warnings[0].Line)
		assert.Equal(t, 2, res.Blocks)
	})

	t.Run("clean", func(t *testing.T) {
		res := Default().FixContent("mixin _$A {\nString get a;\n///\n")
		assert.Empty(t, res.Warnings)
	})
}

func TestNew_CustomTypes(t *testing.T) {
	f, err := New(Options{Types: []string{"double", "List<int>", " "}})
	require.NoError(t, err)

	input := "mixin _$Foo {\n  String get a; double get d; List<int> get ids; int get i;\n///"
	res := f.FixContent(input)

	assert.Equal(t, "mixin _$Foo {\n  String get a;\ndouble get d;\nList<int> get ids; int get i;\n///", res.Content)
	assert.Equal(t, 2, res.Splits)
}

func TestNew_GenericTypes(t *testing.T) {
	f, err := New(Options{GenericTypes: true})
	require.NoError(t, err)

	input := "mixin _$Foo {\n" +
		"  String get a; List<int> get ids; Map<String, List<int>> get m; Foo? get foo; @JsonKey(name: 'x') double get x;\n" +
		"///"
	res := f.FixContent(input)

	assert.Equal(t, "mixin _$Foo {\n"+
		"  String get a;\n"+
		"List<int> get ids;\n"+
		"Map<String, List<int>> get m;\n"+
		"Foo? get foo;\n"+
		"@JsonKey(name: 'x') double get x;\n"+
		"///", res.Content)
	assert.Equal(t, 4, res.Splits)

	again := f.FixContent(res.Content)
	assert.False(t, again.Changed)
}

func TestFixLine(t *testing.T) {
	line, n := Default().FixLine(concatenated, "\n")
	assert.Equal(t, "  String get name;\nint get age;\nbool get active;", line)
	assert.Equal(t, 2, n)

	line, n = Default().FixLine("  String get name;", "\n")
	assert.Equal(t, "  String get name;", line)
	assert.Zero(t, n)
}

func TestFixFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.freezed.dart")
	input := "mixin _$Foo {\n" + concatenated + "\n///\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	t.Run("check only does not write", func(t *testing.T) {
		res, err := Default().FixFile(path, false)
		require.NoError(t, err)
		assert.True(t, res.Changed)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, input, string(data))
	})

	t.Run("write rewrites in place", func(t *testing.T) {
		require.NoError(t, Fix(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "mixin _$Foo {\n  String get name;\nint get age;\nbool get active;\n///\n", string(data))

		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		res, err := Default().FixFile(path, true)
		require.NoError(t, err)
		assert.False(t, res.Changed)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestFixFile_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.freezed.dart")

	err := Fix(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFixBytes(t *testing.T) {
	res := Default().FixBytes([]byte("mixin _$Foo {\n" + concatenated + "\n///"))
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Splits)

	bin := Default().FixBytes([]byte{0xff, 0xfe, 'm', 0x00})
	assert.True(t, bin.Skipped)
	assert.False(t, bin.Changed)
	assert.Equal(t, string([]byte{0xff, 0xfe, 'm', 0x00}), bin.Content)
}

func TestFixFile_SkipsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.freezed.dart")
	data := []byte("mixin _$Foo {\x00String get a; int get b;")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	res, err := Default().FixFile(path, true)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, res.Changed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, after)
}
