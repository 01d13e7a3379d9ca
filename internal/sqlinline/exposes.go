package sqlinline

const QInsertExpose = `--sql 217d363d-2d5b-4cb4-b97c-3bf5a5d75c3a
insert into exposes (id, status, facets, hero_image_url, variants, selected_variant, error_message, slides, provider)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const QUpdateExposePartial = `--sql e51ade6f-2313-43b3-8e87-c66f263f1707
update exposes
set status = coalesce($2, status),
    hero_image_url = coalesce($3, hero_image_url),
    variants = coalesce($4, variants),
    selected_variant = coalesce($5, selected_variant),
    error_message = coalesce($6, error_message),
    slides = coalesce($7, slides),
    provider = coalesce($8, provider),
    updated_at = now()
where id = $1;
`

const QSelectExposeByID = `--sql ba923d23-a5f0-4997-9a9d-5d00986c8eab
select id, status, facets, hero_image_url, variants, selected_variant, error_message, slides, provider, created_at, updated_at
from exposes
where id = $1;
`

const QMarkStaleExposes = `--sql f7b22b35-d540-4f95-acfd-baeb489db5ef
update exposes
set status = $1,
    error_message = $2,
    updated_at = now()
where status = $3
  and updated_at < $4;
`
