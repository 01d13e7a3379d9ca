package sqlinline

const QInsertShootSession = `--sql cc177ed7-28ea-49d9-9d91-cb966b2d7ab8
insert into shoot_sessions (id, status, facets, views, error_message, provider)
values ($1, $2, $3, $4, $5, $6);
`

const QUpdateShootSession = `--sql e86ef3db-5251-4c9c-bc7c-d6d73af4c78a
update shoot_sessions
set status = $2,
    error_message = coalesce($3, error_message),
    updated_at = now()
where id = $1;
`

const QSelectShootSession = `--sql cb206409-86fc-4812-a8c6-969092dbdfd4
select id, status, facets, views, error_message, provider, created_at, updated_at
from shoot_sessions
where id = $1;
`

const QInsertGeneratedPhoto = `--sql 71e9502d-0d87-4566-819e-aef398864e11
insert into generated_photos (id, session_id, view_name, variant_index, url, approval_status)
values ($1, $2, $3, $4, $5, $6);
`

const QSelectSessionPhotos = `--sql aef7c694-c096-4fce-af89-2a9436ec6668
select id, session_id, view_name, variant_index, url, approval_status, created_at
from generated_photos
where session_id = $1
order by view_name, variant_index;
`

const QSetPhotoApproval = `--sql 7e79a1cb-2ae2-4398-930e-c9728dd734a9
update generated_photos
set approval_status = $2
where id = $1;
`
