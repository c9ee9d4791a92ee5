package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"empty", "   ", Command{}},
		{"bare", "logout", Command{Name: "logout"}},
		{"alias", "EXIT", Command{Name: "quit"}},
		{
			name: "args",
			line: "login ada@example.com secret1",
			want: Command{Name: "login", Args: []string{"ada@example.com", "secret1"}, Rest: "ada@example.com secret1"},
		},
		{
			name: "quoted",
			line: `signup "Ada Lovelace" ada@example.com pw pw`,
			want: Command{
				Name: "signup",
				Args: []string{"Ada Lovelace", "ada@example.com", "pw", "pw"},
				Rest: `"Ada Lovelace" ada@example.com pw pw`,
			},
		},
		{
			name: "free text keeps spacing",
			line: "check  sore throat,  mild fever ",
			want: Command{
				Name: "check",
				Args: []string{"sore", "throat,", "mild", "fever"},
				Rest: "sore throat,  mild fever",
			},
		},
		{
			name: "empty quotes",
			line: `name ""`,
			want: Command{Name: "name", Args: []string{""}, Rest: `""`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("fly away")
	assert.ErrorContains(t, err, `unknown command "fly"`)

	_, err = Parse(`login "ada@example.com secret1`)
	assert.ErrorIs(t, err, errUnclosedQuote)
}

func TestParseFreeTextWithStrayQuote(t *testing.T) {
	got, err := Parse(`check I'm 5'11" and dizzy`)
	require.NoError(t, err)
	assert.Equal(t, "check", got.Name)
	assert.Equal(t, `I'm 5'11" and dizzy`, got.Rest)

	got, err = Parse(`history 5'11"`)
	require.NoError(t, err)
	assert.Equal(t, `5'11"`, got.Rest)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", unquote(`"Ada Lovelace"`))
	assert.Equal(t, "plain", unquote("plain"))
	assert.Equal(t, `"`, unquote(`"`))
}
