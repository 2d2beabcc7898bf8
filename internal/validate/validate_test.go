package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scales/internal/catalog"
	"scales/internal/source"
)

const twoPointersTemplate = `def remove_duplicates(arr):
    # TODO: Implement two pointers solution
    pass

def pair_with_target_sum(arr, target):
    # TODO: Implement two pointers solution
    pass
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validate(t *testing.T, template, practice string) *Result {
	t.Helper()
	dir := t.TempDir()
	tp := writeFile(t, dir, "template.py", template)
	pp := writeFile(t, dir, "practice.py", practice)

	res, err := New().Validate(context.Background(), tp, pp)
	require.NoError(t, err)
	return res
}

func TestValidate_IdenticalFilesPass(t *testing.T) {
	res := validate(t, twoPointersTemplate, twoPointersTemplate)

	require.Len(t, res.Functions, 2)
	assert.Equal(t, "remove_duplicates", res.Functions[0].Name)
	assert.Equal(t, "pair_with_target_sum", res.Functions[1].Name)
	for _, f := range res.Functions {
		assert.Equal(t, StatusPass, f.Status, f.Name)
		assert.Empty(t, f.Diff)
		assert.Equal(t, 1.0, f.Similarity)
	}
	assert.True(t, res.Passed())
}

func TestValidate_WhitespaceAndCommentsIgnored(t *testing.T) {
	practice := `def remove_duplicates(arr):

        pass   # still thinking


def pair_with_target_sum(arr, target):
    # a different note
    pass
`
	res := validate(t, twoPointersTemplate, practice)
	for _, f := range res.Functions {
		assert.Equal(t, StatusPass, f.Status, f.Name)
	}
}

func TestValidate_MissingFunction(t *testing.T) {
	practice := "def remove_duplicates(arr):\n    pass\n"
	res := validate(t, twoPointersTemplate, practice)

	f, ok := res.Get("pair_with_target_sum")
	require.True(t, ok)
	assert.Equal(t, StatusMissing, f.Status)
	assert.Equal(t, "Function pair_with_target_sum not found in practice file", f.Message)
	assert.False(t, res.Passed())
}

func TestValidate_DifferentBodyIsPartial(t *testing.T) {
	practice := `def remove_duplicates(arr):
    i = 0
    for j in range(1, len(arr)):
        if arr[j] != arr[i]:
            i += 1
            arr[i] = arr[j]
    return i + 1

def pair_with_target_sum(arr, target):
    pass
`
	res := validate(t, twoPointersTemplate, practice)

	f, ok := res.Get("remove_duplicates")
	require.True(t, ok)
	assert.Equal(t, StatusPartial, f.Status)
	require.NotEmpty(t, f.Diff)
	assert.Equal(t, "--- template", f.Diff[0])
	assert.Equal(t, "+++ practice", f.Diff[1])
	assert.Contains(t, f.Diff, "-pass")
	assert.Contains(t, f.Diff, "+return i + 1")
	assert.Less(t, f.Similarity, 1.0)

	other, _ := res.Get("pair_with_target_sum")
	assert.Equal(t, StatusPass, other.Status)

	counts := res.Counts()
	if d := cmp.Diff(map[Status]int{StatusPass: 1, StatusPartial: 1}, counts); d != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", d)
	}
}

func TestValidate_DynamicBindingIsErrorAndProcessingContinues(t *testing.T) {
	practice := `import functools

remove_duplicates = functools.partial(print)

def pair_with_target_sum(arr, target):
    pass
`
	res := validate(t, twoPointersTemplate, practice)
	require.Len(t, res.Functions, 2)

	f, _ := res.Get("remove_duplicates")
	assert.Equal(t, StatusError, f.Status)
	assert.Contains(t, f.Message, "remove_duplicates")
	assert.Contains(t, f.Message, "practice file")

	other, _ := res.Get("pair_with_target_sum")
	assert.Equal(t, StatusPass, other.Status)
}

func TestValidate_PracticeOnlyFunctionsIgnored(t *testing.T) {
	practice := twoPointersTemplate + "\ndef helper():\n    return 42\n"
	res := validate(t, twoPointersTemplate, practice)

	_, ok := res.Get("helper")
	assert.False(t, ok)
	assert.Len(t, res.Functions, 2)
}

func TestValidate_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.py", twoPointersTemplate)
	broken := writeFile(t, dir, "broken.py", "def broken(:\n")
	text := writeFile(t, dir, "notes.txt", "hello")

	tests := []struct {
		name     string
		template string
		practice string
		badPath  string
	}{
		{"syntax error in practice", good, broken, broken},
		{"syntax error in template", broken, good, broken},
		{"missing practice", good, filepath.Join(dir, "absent.py"), filepath.Join(dir, "absent.py")},
		{"unsupported extension", text, good, text},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Validate(context.Background(), tt.template, tt.practice)
			require.Error(t, err)

			var lerr *LoadError
			require.True(t, errors.As(err, &lerr))
			assert.Equal(t, tt.badPath, lerr.Path)
		})
	}
}

func TestValidate_SyntaxErrorUnwraps(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.py", twoPointersTemplate)
	broken := writeFile(t, dir, "broken.py", "def broken(:\n")

	_, err := New().Validate(context.Background(), good, broken)
	var serr *source.SyntaxError
	assert.True(t, errors.As(err, &serr))
}

func TestValidate_GoFiles(t *testing.T) {
	dir := t.TempDir()
	tmpl := "package practice\n\nfunc nextGreater(nums []int) []int {\n\t// TODO: Implement\n\treturn nil\n}\n"
	practice := "package practice\n\nfunc nextGreater(nums []int) []int {\n\treturn nil // done later\n}\n"
	tp := writeFile(t, dir, "t.go", tmpl)
	pp := writeFile(t, dir, "p.go", practice)

	res, err := New().Validate(context.Background(), tp, pp)
	require.NoError(t, err)
	f, ok := res.Get("nextGreater")
	require.True(t, ok)
	assert.Equal(t, StatusPass, f.Status)
}

func TestValidate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	tp := writeFile(t, dir, "t.py", twoPointersTemplate)
	_, err := New().Validate(ctx, tp, tp)
	require.Error(t, err)
}

func TestValidate_ConstantsAndScriptEntryIgnored(t *testing.T) {
	template := `INF = float("inf")
N = len([1, 2, 3])

def solve(nums):
    return INF

if __name__ == "__main__":
    result = solve([1, 2])
`
	res := validate(t, template, template)

	require.Len(t, res.Functions, 1)
	assert.Equal(t, "solve", res.Functions[0].Name)
	assert.Equal(t, StatusPass, res.Functions[0].Status)
}

func TestValidate_DefinitionUnderScriptEntryIsMissing(t *testing.T) {
	practice := `if __name__ == "__main__":
    def solve(nums):
        return 0
`
	res := validate(t, "def solve(nums):\n    return 0\n", practice)

	f, ok := res.Get("solve")
	require.True(t, ok)
	assert.Equal(t, StatusMissing, f.Status)
}

func TestValidate_TupleAssignedAliases(t *testing.T) {
	template := "def f():\n    pass\n\ndef g():\n    return 1\n\na, b = f, g\n"
	practice := "def f():\n    pass\n\ndef g():\n    return 2\n\na, b = f, g\n"
	res := validate(t, template, practice)

	got := make(map[string]Status)
	for _, f := range res.Functions {
		got[f.Name] = f.Status
	}
	want := map[string]Status{"f": StatusPass, "g": StatusPartial, "a": StatusPass, "b": StatusPartial}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_UnknownIdentifierBindingIsError(t *testing.T) {
	res := validate(t, "def show():\n    pass\n", "show = print\n")

	f, ok := res.Get("show")
	require.True(t, ok)
	assert.Equal(t, StatusError, f.Status)
	assert.Contains(t, f.Message, "in practice file")
}

func TestValidate_BuiltinTemplatesPassAgainstThemselves(t *testing.T) {
	reg, err := catalog.Default()
	require.NoError(t, err)

	for _, id := range reg.List() {
		p, err := reg.Get(id)
		require.NoError(t, err)
		for _, tmpl := range p.Templates {
			t.Run(id+"/"+tmpl.Slug(), func(t *testing.T) {
				dir := t.TempDir()
				tp := writeFile(t, dir, "template"+tmpl.Extension(), tmpl.Body)
				pp := writeFile(t, dir, "practice"+tmpl.Extension(), tmpl.Body)

				res, err := New().Validate(context.Background(), tp, pp)
				require.NoError(t, err)
				require.NotEmpty(t, res.Functions)
				for _, f := range res.Functions {
					assert.Equal(t, StatusPass, f.Status, "%s: %s", f.Name, f.Message)
				}
				assert.True(t, res.Passed())
			})
		}
	}
}

func TestNormalize(t *testing.T) {
	text := "def f(x):\n\n    # note\n    return x   \n\t\n"
	want := []string{"def f(x):", "return x"}
	if d := cmp.Diff(want, Normalize(text, "#")); d != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", d)
	}
	assert.Nil(t, Normalize("  \n\n", "#"))
}
