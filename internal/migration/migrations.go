package migration

// All lists every schema migration in order. Versions are never renumbered;
// new changes are appended.
var All = []Migration{
	{
		Version:     1,
		Name:        "CreateUserTable",
		Description: "Users with unique username and email",
		Up: []string{`
CREATE TABLE IF NOT EXISTS user (
    id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    username      VARCHAR(64)  NOT NULL,
    email         VARCHAR(255) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    bio           VARCHAR(512) NULL,
    avatar        VARCHAR(512) NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    deleted_at    DATETIME NULL,
    PRIMARY KEY (id),
    UNIQUE KEY uk_user_username (username),
    UNIQUE KEY uk_user_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	},
	{
		Version:     2,
		Name:        "CreateCategoryAndTagTables",
		Description: "Categories and tags with unique names",
		Up: []string{`
CREATE TABLE IF NOT EXISTS category (
    id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    name        VARCHAR(64)  NOT NULL,
    description VARCHAR(512) NULL,
    status      TINYINT UNSIGNED NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    deleted_at  DATETIME NULL,
    PRIMARY KEY (id),
    UNIQUE KEY uk_category_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS tag (
    id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    name        VARCHAR(64)  NOT NULL,
    type        TINYINT UNSIGNED NOT NULL DEFAULT 0,
    status      TINYINT UNSIGNED NOT NULL DEFAULT 0,
    description VARCHAR(512) NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    deleted_at  DATETIME NULL,
    PRIMARY KEY (id),
    UNIQUE KEY uk_tag_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	},
	{
		Version:     3,
		Name:        "CreateArticleTables",
		Description: "Articles and the article/tag association",
		Up: []string{`
CREATE TABLE IF NOT EXISTS article (
    id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    title         VARCHAR(255) NOT NULL,
    slug          VARCHAR(255) NOT NULL,
    cover         VARCHAR(512) NOT NULL DEFAULT '',
    content       MEDIUMTEXT   NOT NULL,
    summary       VARCHAR(1024) NOT NULL DEFAULT '',
    password_hash VARCHAR(255) NULL,
    source        TINYINT UNSIGNED NOT NULL DEFAULT 0,
    source_url    VARCHAR(512) NULL,
    topping       TINYINT UNSIGNED NOT NULL DEFAULT 0,
    status        TINYINT UNSIGNED NOT NULL DEFAULT 0,
    category_id   BIGINT UNSIGNED NOT NULL,
    user_id       BIGINT UNSIGNED NOT NULL,
    created_at    DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
    updated_at    DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
    deleted_at    DATETIME NULL,
    PRIMARY KEY (id),
    KEY idx_article_slug (slug),
    KEY idx_article_created (created_at, id),
    CONSTRAINT fk_article_user FOREIGN KEY (user_id) REFERENCES user (id) ON DELETE RESTRICT,
    CONSTRAINT fk_article_category FOREIGN KEY (category_id) REFERENCES category (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS article_tag (
    id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    article_id BIGINT UNSIGNED NOT NULL,
    tag_id     BIGINT UNSIGNED NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    PRIMARY KEY (id),
    UNIQUE KEY uk_article_tag (article_id, tag_id),
    KEY idx_article_tag_tag (tag_id),
    CONSTRAINT fk_article_tag_article FOREIGN KEY (article_id) REFERENCES article (id) ON DELETE RESTRICT,
    CONSTRAINT fk_article_tag_tag FOREIGN KEY (tag_id) REFERENCES tag (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	},
	{
		Version:     4,
		Name:        "CreateSeriesTables",
		Description: "Series and their ordered article membership",
		Up: []string{`
CREATE TABLE IF NOT EXISTS series (
    id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    name         VARCHAR(255) NOT NULL,
    description  VARCHAR(1024) NULL,
    cover        VARCHAR(512) NOT NULL DEFAULT '',
    status       TINYINT UNSIGNED NOT NULL DEFAULT 0,
    nums         INT UNSIGNED NOT NULL DEFAULT 0,
    type         TINYINT UNSIGNED NOT NULL DEFAULT 0,
    published_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_id      BIGINT UNSIGNED NOT NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    deleted_at   DATETIME NULL,
    PRIMARY KEY (id),
    UNIQUE KEY uk_series_name (name),
    CONSTRAINT fk_series_user FOREIGN KEY (user_id) REFERENCES user (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS series_article (
    id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    series_id  BIGINT UNSIGNED NOT NULL,
    article_id BIGINT UNSIGNED NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (id),
    UNIQUE KEY uk_series_article (series_id, article_id),
    KEY idx_series_article_article (article_id),
    CONSTRAINT fk_series_article_series FOREIGN KEY (series_id) REFERENCES series (id) ON DELETE RESTRICT,
    CONSTRAINT fk_series_article_article FOREIGN KEY (article_id) REFERENCES article (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	},
	{
		Version:     5,
		Name:        "CreateCommentTable",
		Description: "Threaded comments on articles",
		Up: []string{`
CREATE TABLE IF NOT EXISTS comment (
    id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    content           TEXT NOT NULL,
    top_comment_id    BIGINT UNSIGNED NULL,
    parent_comment_id BIGINT UNSIGNED NULL,
    article_id        BIGINT UNSIGNED NOT NULL,
    user_id           BIGINT UNSIGNED NOT NULL,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    deleted_at        DATETIME NULL,
    PRIMARY KEY (id),
    KEY idx_comment_article (article_id),
    CONSTRAINT fk_comment_article FOREIGN KEY (article_id) REFERENCES article (id) ON DELETE RESTRICT,
    CONSTRAINT fk_comment_user FOREIGN KEY (user_id) REFERENCES user (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	},
}
