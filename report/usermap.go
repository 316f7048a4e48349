package report

// UserMapper translates host logins into display names. It is fixed once
// built; WithMapping returns a new mapper.
type UserMapper struct {
	names map[string]string
}

// DefaultUserMapper knows the maintainers whose logins differ from their names.
func DefaultUserMapper() UserMapper {
	return NewUserMapper(map[string]string{
		"kentamurai": "Kenta Murai",
		"muraikenta": "Kenta Murai",
	})
}

func NewUserMapper(names map[string]string) UserMapper {
	m := make(map[string]string, len(names))
	for k, v := range names {
		m[k] = v
	}
	return UserMapper{names: m}
}

// Map returns the display name of login. Empty and "unknown" logins map to
// "unknown"; logins without an entry are returned as is.
func (u UserMapper) Map(login string) string {
	if login == "" || login == "unknown" {
		return "unknown"
	}
	if name, ok := u.names[login]; ok {
		return name
	}
	return login
}

// WithMapping returns a copy of u with one more entry.
func (u UserMapper) WithMapping(login, name string) UserMapper {
	next := NewUserMapper(u.names)
	next.names[login] = name
	return next
}
