package model

// User は users テーブルの1行を表す。
type User struct {
	// ID はユーザーの一意識別子。
	ID int64
	// Name は表示名。
	Name string
	// Email はログインに使うメールアドレス。保存時に小文字へ正規化される。
	Email string
	// PasswordHash はbcryptでハッシュ化されたパスワード。
	PasswordHash string
	// JTI はトークン失効マーカー。値を差し替えると発行済みトークンがすべて無効になる。
	JTI string
}

// UserView はユーザーの公開用射影。
type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// View はユーザーを公開用射影に変換する。
func (u User) View() UserView {
	return UserView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// Identity はリクエスト単位で解決された呼び出し元ユーザー。
// 認証ミドルウェアが生成し、サービス層の各操作に明示的に渡される。
type Identity struct {
	// UserID は認証済みユーザーのID。
	UserID int64
	// Name は認証済みユーザーの表示名。
	Name string
	// Email は認証済みユーザーのメールアドレス。
	Email string
}

// IdentityOf はユーザーからIdentityを生成する。
func IdentityOf(u User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
}
