package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequireFamilyWithoutFamily(t *testing.T) {
	db := openTestDB(t)
	resolver := NewResolver(db)

	loner := createUser(t, db, "loner", "+100", nil, "")

	_, err := resolver.RequireFamily(loner.ID)
	require.Error(t, err)
	require.True(t, IsKind(err, KindPrecondition))
}

func TestRequireFamilyUnknownUser(t *testing.T) {
	db := openTestDB(t)
	resolver := NewResolver(db)

	_, err := resolver.RequireFamily(9999)
	require.True(t, IsKind(err, KindNotFound))
}

func TestMembersExcludesGivenUser(t *testing.T) {
	db := openTestDB(t)
	resolver := NewResolver(db)

	admin := createUser(t, db, "admin", "+101", nil, "")
	family := createFamily(t, db, "Smiths", "AB12CD", admin.ID)
	require.NoError(t, db.Model(admin).Update("family_id", family.ID).Error)
	b := createUser(t, db, "bob", "+102", &family.ID, "")
	c := createUser(t, db, "carol", "+103", &family.ID, "")

	members, err := resolver.Members(family.ID, admin.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	ids := []uint{members[0].ID, members[1].ID}
	require.ElementsMatch(t, []uint{b.ID, c.ID}, ids)

	all, err := resolver.Members(family.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestAuthorize(t *testing.T) {
	db := openTestDB(t)
	resolver := NewResolver(db)

	admin := createUser(t, db, "admin", "+104", nil, "")
	family := createFamily(t, db, "Smiths", "EF34AB", admin.ID)
	require.NoError(t, db.Model(admin).Update("family_id", family.ID).Error)
	outsider := createUser(t, db, "eve", "+105", nil, "")

	require.NoError(t, resolver.Authorize(admin.ID, family.ID))

	err := resolver.Authorize(outsider.ID, family.ID)
	require.True(t, IsKind(err, KindPrecondition))

	err = resolver.Authorize(admin.ID, family.ID+1)
	require.True(t, IsKind(err, KindPrecondition))
}

func TestFamilyOf(t *testing.T) {
	db := openTestDB(t)
	resolver := NewResolver(db)

	admin := createUser(t, db, "admin", "+106", nil, "")
	family := createFamily(t, db, "Smiths", "CD56EF", admin.ID)
	require.NoError(t, db.Model(admin).Update("family_id", family.ID).Error)

	got, ok, err := resolver.FamilyOf(admin.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, family.ID, got)

	loner := createUser(t, db, "loner", "+107", nil, "")
	_, ok, err = resolver.FamilyOf(loner.ID)
	require.NoError(t, err)
	require.False(t, ok)
}
